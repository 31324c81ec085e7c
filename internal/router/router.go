// Copyright 2026 fanjia1024
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

// Package router is the stateless, referentially transparent task classifier:
// task text in, agent kind + reason out. No I/O, no collaborators.
package router

import (
	"fmt"
	"regexp"
	"strings"
)

// Decision is the Router's sole output shape.
type Decision struct {
	Agent  string
	Reason string
}

func count(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Decide classifies task text into an agent kind, per the scored,
// boost-adjusted rule set in patterns.go. Ties resolve toward content.
func Decide(task string) Decision {
	t := strings.ToLower(task)

	code := count(codePatterns, t)
	content := count(contentPatterns, t)

	if anyMatch(hardCode, t) {
		code += 2
	}
	if anyMatch(hardContent, t) {
		content += 2
	}
	if coOccur.MatchString(t) {
		code += 2
	}

	breakdown := fmt.Sprintf("{code: %d, content: %d}", code, content)

	if code >= 2 && code > content {
		return Decision{Agent: "code", Reason: "rules: code_signals=" + breakdown}
	}
	if content >= 1 && content >= code {
		return Decision{Agent: "content", Reason: "rules: content_signals=" + breakdown}
	}
	return Decision{Agent: "content", Reason: "fallback_content: signals=" + breakdown}
}
