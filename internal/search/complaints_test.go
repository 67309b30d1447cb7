package search

import (
	"testing"

	"anoa.com/hostelhub/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScopeFilter(t *testing.T) {
	id := uuid.MustParse("0190c6d2-4a3b-7c1d-8e2f-123456789abc")

	assert.Equal(t, "", ScopeFilter(policy.Predicate{All: true}))
	assert.Equal(t, `student_id = "0190c6d2-4a3b-7c1d-8e2f-123456789abc"`, ScopeFilter(policy.Predicate{StudentID: &id}))
	assert.Equal(t, `hostel_block = "A \"east\""`, ScopeFilter(policy.Predicate{HostelBlock: `A "east"`}))
	assert.Equal(t, `id = ""`, ScopeFilter(policy.Predicate{}))
}
