// Copyright 2025 Poiesic Systems
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


// Package search ranks stored questions against a free-text query.
//
// The Matcher type vectorizes the corpus and the query together as one
// TF-IDF batch, so the query is weighted with the corpus document
// frequencies, then scores each corpus text by cosine similarity:
//
//	matcher, err := search.NewMatcher(nlp.NewNormalizer(nlp.Portuguese{}))
//	results := matcher.Match("o que é feedback", questions, 3)
//
// Results are ordered by score, highest first, with ties broken by corpus
// position. Vectors are rebuilt on every call.
package search
