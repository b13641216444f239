// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package worker

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/acquirecloud/deadline/golibs/errors"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// frame is the single message a worker sends back over the dedicated pipe.
// The callable's own stdout and stderr pass through untouched, so the frame
// channel never mixes with the user output.
type frame struct {
	// RunID echoes the run ID the parent assigned, a frame with a foreign ID
	// is rejected
	RunID string
	// Ok tells which of the two legs below is meaningful
	Ok bool
	// Result carries the gob-encoded callable result when Ok
	Result []byte
	// Status carries the marshaled gRPC status of the error when !Ok
	Status []byte
}

func writeFrame(w io.Writer, f frame) error {
	if err := gob.NewEncoder(w).Encode(&f); err != nil {
		return fmt.Errorf("could not write the worker frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader) (frame, error) {
	var f frame
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return frame{}, fmt.Errorf("could not read the worker frame: %w", err)
	}
	return f, nil
}

// encodeError turns an error into the wire form: a gRPC status carrying the
// general error class as the code and the original text as the message
func encodeError(err error) []byte {
	st := status.New(errors.GRPCStatusCode(err), err.Error())
	buf, merr := proto.Marshal(st.Proto())
	if merr != nil {
		buf, _ = proto.Marshal(status.New(codes.Internal, err.Error()).Proto())
	}
	return buf
}

// decodeError restores the error from the wire form. The identity of the
// general class survives the boundary, so errors.Is() keeps working on the
// caller side, the rest of the error value does not.
func decodeError(buf []byte) error {
	var sp spb.Status
	if err := proto.Unmarshal(buf, &sp); err != nil {
		return fmt.Errorf("could not unmarshal the worker error status: %w", errors.ErrInternal)
	}
	class := errors.FromGRPCCode(codes.Code(sp.Code))
	if class == nil {
		class = errors.ErrInternal
	}
	if class == errors.ErrDataLoss {
		// the worker could not carry the result back
		return fmt.Errorf("%s: %w", sp.Message, ErrResultNotSerializable)
	}
	return fmt.Errorf("%s: %w", sp.Message, class)
}
