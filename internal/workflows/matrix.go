package workflows

import "sort"

// Class identifies one CI job class of the sample-graph pipeline.
type Class string

const (
	ClassCollect  Class = "collect"
	ClassValidate Class = "validate"
	ClassAnalyze  Class = "analyze"
	ClassBackup   Class = "backup"
	ClassDeploy   Class = "deploy"
)

// ConflictMatrix maps each class to the set of classes it must not run
// concurrently with. The matrix is always symmetric: declaring A-B also
// records B-A.
type ConflictMatrix struct {
	conflicts map[Class]map[Class]struct{}
}

// NewConflictMatrix builds a symmetric matrix from one-directional
// declarations.
func NewConflictMatrix(declarations map[Class][]Class) *ConflictMatrix {
	m := &ConflictMatrix{conflicts: make(map[Class]map[Class]struct{})}
	for class, others := range declarations {
		for _, other := range others {
			m.add(class, other)
			m.add(other, class)
		}
	}
	return m
}

// DefaultMatrix declares the pipeline's known exclusions: anything that
// mutates the checkpoint excludes everything else that reads or mutates
// it, while deploy only excludes the collectors that could publish a
// half-written graph.
func DefaultMatrix() *ConflictMatrix {
	return NewConflictMatrix(map[Class][]Class{
		ClassCollect:  {ClassValidate, ClassAnalyze, ClassBackup},
		ClassValidate: {ClassAnalyze, ClassBackup},
		ClassDeploy:   {ClassCollect, ClassValidate},
	})
}

func (m *ConflictMatrix) add(class, other Class) {
	if class == other {
		return
	}
	set, ok := m.conflicts[class]
	if !ok {
		set = make(map[Class]struct{})
		m.conflicts[class] = set
	}
	set[other] = struct{}{}
}

// ConflictsWith returns the classes the given class must not overlap
// with, sorted for stable iteration.
func (m *ConflictMatrix) ConflictsWith(class Class) []Class {
	set := m.conflicts[class]
	classes := make([]Class, 0, len(set))
	for other := range set {
		classes = append(classes, other)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}

// Classes lists every class the matrix knows about, sorted.
func (m *ConflictMatrix) Classes() []Class {
	classes := make([]Class, 0, len(m.conflicts))
	for class := range m.conflicts {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}
