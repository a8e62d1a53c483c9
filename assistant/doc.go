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


// Package assistant turns ranked matches into replies.
//
// An Assistant loads every stored question, ranks them against the user's
// question and applies the decision policy held in Config:
//
//   - no stored items: the empty knowledge base message
//   - best score below Threshold: the no-match message, the stored answer is
//     never exposed
//   - otherwise: the stored answer of the best candidate
//
// Each question and its reply are appended to the conversation transcript.
//
// # Configuration
//
// Config follows the functional options pattern:
//
//	cfg := assistant.NewConfig(
//	    assistant.WithThreshold(0.2),
//	    assistant.WithLanguage("en"),
//	)
//
// LoadConfigFile reads the same fields from YAML:
//
//	language: pt
//	threshold: 0.12
//	topK: 3
package assistant
