// Copyright 2024 The acquirecloud Authors
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
Package worker enforces deadlines on callables which cannot be interrupted
cooperatively. The callable runs in an isolated worker process - a re-executed
copy of the current binary - so when the deadline passes the worker is killed
outright, without touching the caller's own state.

The price of the isolation is the serialization boundary: only the functions
registered by Register() may be called, the argument and the result must be
gob-encodable, and errors come back as their general class (see golibs/errors)
plus the original text.

The worker mode is entered through Init(), which must be the first call of the
program's main():

	func main() {
		if worker.Init() {
			return
		}
		// the normal program flow
	}
*/
package worker
