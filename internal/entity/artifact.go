package entity

import "image"

// Artifact is one capture taken after an action during a replay. Artifacts
// are produced once by the clickstream runner and immutable afterwards.
type Artifact struct {
	Condition   Condition
	ActionIndex int
	Screenshot  image.Image
}

// Clickstream is one bounded action sequence replayed across conditions.
// Actions holds the structural selectors in replay order; Artifacts holds,
// per condition, the captures in action order. A replay that diverged early
// simply has a shorter artifact slice for that condition.
type Clickstream struct {
	ID        string
	Website   string
	Actions   []string
	Artifacts map[Condition][]Artifact
}

// ArtifactCount returns the number of captures taken under the condition.
func (c *Clickstream) ArtifactCount(cond Condition) int {
	return len(c.Artifacts[cond])
}
