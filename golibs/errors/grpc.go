// Copyright 2023 The acquirecloud Authors
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
package errors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codesToErrors = map[codes.Code]error{
	codes.OK:                 nil,
	codes.Canceled:           ErrCanceled,
	codes.DeadlineExceeded:   ErrExceeded,
	codes.InvalidArgument:    ErrInvalid,
	codes.NotFound:           ErrNotExist,
	codes.AlreadyExists:      ErrExist,
	codes.DataLoss:           ErrDataLoss,
	codes.Unavailable:        ErrCommunication,
	codes.Unimplemented:      ErrUnimplemented,
	codes.FailedPrecondition: ErrConflict,
}

var errorsToCodes = map[error]codes.Code{
	ErrCanceled:      codes.Canceled,
	ErrExceeded:      codes.DeadlineExceeded,
	ErrInvalid:       codes.InvalidArgument,
	ErrNotExist:      codes.NotFound,
	ErrExist:         codes.AlreadyExists,
	ErrDataLoss:      codes.DataLoss,
	ErrCommunication: codes.Unavailable,
	ErrUnimplemented: codes.Unimplemented,
	ErrConflict:      codes.FailedPrecondition,
	ErrInternal:      codes.Internal,
}

// FromGRPCError receives a gRPC error (code-based) and returns one of the
// general error classes (ErrNotExist, ErrExceeded...)
func FromGRPCError(err error) error {
	if err, ok := codesToErrors[status.Code(err)]; ok {
		return err
	}
	return ErrInternal
}

// FromGRPCCode returns the general error class for the gRPC code provided
func FromGRPCCode(code codes.Code) error {
	if err, ok := codesToErrors[code]; ok {
		return err
	}
	return ErrInternal
}

// GRPCStatusCode returns the gRPC status code for the error provided. If the
// error doesn't match any of the general classes, codes.Internal is returned.
func GRPCStatusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if code := status.Code(err); code != codes.Unknown {
		return code
	}
	for e, c := range errorsToCodes {
		if errors.Is(err, e) {
			return c
		}
	}
	return codes.Internal
}

// GRPCWrap turns the error to the gRPC code-based form, keeping the error
// text. Errors which are already gRPC formed are returned as is.
func GRPCWrap(err error) error {
	if err == nil {
		return nil
	}
	if code := status.Code(err); code != codes.Unknown {
		return err
	}
	return status.Error(GRPCStatusCode(err), err.Error())
}

func isGRPCError(err error) bool {
	_, ok := status.FromError(err)
	return ok && status.Code(err) != codes.Unknown
}
