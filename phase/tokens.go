// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package phase

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter, as is ':' when colon is true.
//
// These simple loops are better than any of the standard library
// string-split functions for the short marker-list lines, and they let the
// phased-state reader pick out the sample column without allocating a slice
// per line.
func getTokens(tokens [][]byte, curLine []byte, colon bool) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if !isDelim(curLine[pos], colon) {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if isDelim(curLine[posEnd], colon) {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// lastToken returns the final token of curLine under the same delimiter rules
// as getTokens, or nil if the line has no tokens.
func lastToken(curLine []byte, colon bool) []byte {
	end := len(curLine)
	for ; end != 0; end-- {
		if !isDelim(curLine[end-1], colon) {
			break
		}
	}
	start := end
	for ; start != 0; start-- {
		if isDelim(curLine[start-1], colon) {
			break
		}
	}
	if start == end {
		return nil
	}
	return curLine[start:end]
}

func isDelim(c byte, colon bool) bool {
	return c <= ' ' || (colon && c == ':')
}
