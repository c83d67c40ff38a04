package reasoning

// Environment describes the scene an action most likely happens in.
type Environment struct {
	SceneType  string   `json:"scene_type"`
	KeyObjects []string `json:"key_objects"`
}

// ActionReasoning is the normalized single-action reasoning object.
// Every field is always present; list fields are never nil.
type ActionReasoning struct {
	Intent        string      `json:"intent"`
	NextStep      string      `json:"next_step"`
	Explanation   string      `json:"explanation"`
	Environment   Environment `json:"environment"`
	AgentState    string      `json:"agent_state"`
	Affordances   []string    `json:"affordances"`
	Constraints   []string    `json:"constraints"`
	TaskGoal      string      `json:"task_goal"`
	CurrentStep   string      `json:"current_step"`
	FutureSteps   []string    `json:"future_steps"`
	TargetObjects []string    `json:"target_objects"`
}

// TemporalReasoning is the normalized reasoning over an ordered action sequence.
type TemporalReasoning struct {
	OverallTask      string   `json:"overall_task"`
	StepRoles        []string `json:"step_roles"`
	PossibleGoal     string   `json:"possible_goal"`
	FuturePlan       []string `json:"future_plan"`
	UncertaintyNotes []string `json:"uncertainty_notes"`
}

// Cardinality bounds used by Backfill. Max caps only the entries Backfill adds.
const (
	MinAffordances   = 3
	MaxAffordances   = 5
	MinConstraints   = 2
	MaxConstraints   = 4
	MinFutureSteps   = 2
	MaxFutureSteps   = 4
	MinTargetObjects = 2
	MaxTargetObjects = 4
)

var (
	cannedAffordances = []string{
		"approach relevant object safely",
		"grasp/manipulate the object",
		"move to the next location or step",
	}
	cannedConstraints = []string{
		"avoid collisions with people/objects",
		"ensure stable footing and safe motion",
	}
	cannedFutureSteps = []string{
		"complete the immediate subtask",
		"transition to the next goal-oriented action",
	}
	cannedTargetObjects = []string{
		"relevant object",
		"destination",
	}
)

// DefaultActionReasoning returns the empty schema object.
func DefaultActionReasoning() ActionReasoning {
	return ActionReasoning{
		Environment:   Environment{KeyObjects: []string{}},
		Affordances:   []string{},
		Constraints:   []string{},
		FutureSteps:   []string{},
		TargetObjects: []string{},
	}
}

// DefaultTemporalReasoning returns the empty temporal schema object.
func DefaultTemporalReasoning() TemporalReasoning {
	return TemporalReasoning{
		StepRoles:        []string{},
		FuturePlan:       []string{},
		UncertaintyNotes: []string{},
	}
}
