// Copyright 2025 Blink Labs Software
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

package host

import "fmt"

const (
	EchoCodeHash   = "echo"
	EchoFnDemoExec = "demo_exec"
)

// EchoCode returns its single argument. It is a target for exercising
// proposal execution.
type EchoCode struct{}

func (EchoCode) Call(cc *CallContext, function string, args []any) (any, error) {
	if function != EchoFnDemoExec {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
	}
	if err := checkArgCount(args, 1); err != nil {
		return nil, err
	}
	return args[0], nil
}
