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

package router

import "regexp"

// langTokens is the set of language names/abbreviations the co-occurrence
// and weak-signal patterns key off of.
const langTokens = `(python|javascript|typescript|js|ts|java|go|golang|rust|c\+\+|c#|ruby|php)`

var codePatterns = compileAll([]string{
	`\bkod( yaz|la)?\b`,
	`\bcode\b`,
	`\bimplement(et|ation)?\b`,
	`\b(function|class|method|api|endpoint)\b`,
	`\btest(ler|)\b|\bunit test\b|\bpytest\b|\bassert\b`,
	"```",
	`\bimport\s+\w+`,
	`\b` + langTokens + `\b`,
})

var contentPatterns = compileAll([]string{
	`\bblog\b`,
	`\bmakale\b`,
	`\byazı\b`,
	`\biçerik\b`,
	`\bnedir\b`,
	`\baçıkla\b`,
	`\bözet(le|)\b`,
	`\brehber\b`,
	`\bkarşılaştır\b`,
	`\bkaynak(ça)?\b`,
	`\breferans(lar)?\b`,
	`\blink ver\b`,
	`\bar(a|â)ştır(ma)?\b`,
	`\bincele\b`,
})

var hardCode = compileAll([]string{
	`\bkod yaz\b`,
	`\bunit test\b`,
	`\bpytest\b`,
	`\bfonksiyon yaz\b`,
	"```",
	`\bfunction\b`,
	`\bclass\b`,
})

var hardContent = compileAll([]string{
	`\bblog yaz\b`,
	`\bmakale yaz\b`,
	`\bkaynak(ça)? ver\b`,
})

// coOccur fires when a language token and an example/snippet/function noun
// appear together in either order — a strong code signal on its own.
var coOccur = regexp.MustCompile(`(?i)` +
	`(\b` + langTokens + `\b.*\b(örnek|orneği|ornegi|örneği|kod|kodu|snippet|demo|fonksiyon|function)\b)` +
	`|(\b(örnek|orneği|ornegi|örneği|kod|kodu|snippet|demo|fonksiyon|function)\b.*\b` + langTokens + `\b)`)

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}
