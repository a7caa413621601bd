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


// Package ingestion turns freshly captured content into searchable
// chunks.
//
// The request path only persists the capture row; everything else runs
// as a detached background task submitted to a worker pool. Each task
// walks a linear pipeline: normalize the source-specific payload into
// one text body, summarize it, chunk the result, embed each chunk, and
// bulk-insert the surviving chunk rows.
//
// Failure policy: nothing downstream of capture creation is ever rolled
// back. A failed transcript fetch, summary, or single chunk embedding
// is logged and skipped; the capture stays visible with whatever fields
// made it. A capture whose normalized text ends up empty is a normal
// terminal state, not an error.
package ingestion
