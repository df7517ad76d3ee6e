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


package ingestion

// Pipeline stage names reported through the progress sink.
const (
	StageStatementsExtracted = "statements_extracted"
	StageGraphBuilt          = "graph_built"
	StageDeduplicated        = "deduplicated"
)

// ProgressSink receives fire-and-forget pipeline progress events. Sinks run
// on the pipeline goroutine and should return quickly; a panicking sink is
// recovered and logged, never propagated.
type ProgressSink func(stage, message string, data any)

// emit logs the stage transition and invokes the sink, shielding the
// pipeline from sink failures.
func (p *Pipeline) emit(stage, message string, data any) {
	p.logger.Debug("pipeline progress", "stage", stage, "message", message)
	if p.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("progress sink panicked", "stage", stage, "panic", r)
		}
	}()
	p.progress(stage, message, data)
}
