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


// Package nlp turns free text into comparable terms.
//
// An Analyzer segments text into tokens and annotates each one with its base
// form and its stop-word, punctuation and whitespace flags. The Normalizer
// drives an Analyzer and keeps only the base forms worth comparing:
//
//	analyzer, err := nlp.ForLanguage("pt")
//	if err != nil {
//	    return err
//	}
//	terms := nlp.NewNormalizer(analyzer).Normalize("O que é comunicação?")
//	// terms == []string{"comunicação"}
//
// Analyzers hold only read-only tables once constructed and are safe for
// concurrent use.
package nlp
