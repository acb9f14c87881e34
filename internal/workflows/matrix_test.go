package workflows_test

import (
	"testing"

	"samplegraph/internal/workflows"
)

func TestMatrixIsSymmetric(t *testing.T) {
	matrix := workflows.NewConflictMatrix(map[workflows.Class][]workflows.Class{
		workflows.ClassCollect: {workflows.ClassValidate},
	})

	has := func(class, other workflows.Class) bool {
		for _, c := range matrix.ConflictsWith(class) {
			if c == other {
				return true
			}
		}
		return false
	}
	if !has(workflows.ClassCollect, workflows.ClassValidate) {
		t.Error("declared direction missing")
	}
	if !has(workflows.ClassValidate, workflows.ClassCollect) {
		t.Error("reverse direction not derived")
	}
}

func TestDefaultMatrixSymmetry(t *testing.T) {
	matrix := workflows.DefaultMatrix()
	for _, class := range matrix.Classes() {
		for _, other := range matrix.ConflictsWith(class) {
			reversed := matrix.ConflictsWith(other)
			found := false
			for _, c := range reversed {
				if c == class {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s conflicts with %s but not vice versa", class, other)
			}
		}
	}
}

func TestMatrixIgnoresSelfConflict(t *testing.T) {
	matrix := workflows.NewConflictMatrix(map[workflows.Class][]workflows.Class{
		workflows.ClassBackup: {workflows.ClassBackup},
	})
	if got := matrix.ConflictsWith(workflows.ClassBackup); len(got) != 0 {
		t.Errorf("self conflict recorded: %v", got)
	}
}
