// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
/*
Package errors contains the general classes of errors the modules of the
repository may use. The globally defined error variables describe situations
that may be turned into a user-faced error or travel between processes.

The package also contains gRPC helper functions that encode the general
errors to gRPC code-based errors and back, so an error class survives a
serialization boundary.
*/
package errors
