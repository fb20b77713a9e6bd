package tracing

// Span names.
const (
	SpanScenarioRun  = "scenario.run"
	SpanScenarioStep = "scenario.step"
)

// Span attribute keys.
const (
	AttrScenarioName = "scenario.name"
	AttrStepIndex    = "step.index"
	AttrStepOp       = "step.op"
	AttrStepDesc     = "step.desc"
	AttrRecords      = "collection.records"
	AttrDeckSize     = "deck.size"
	AttrFrames       = "scenario.frames"
)
