package policy_test

import (
	"context"
	"errors"
	"testing"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/testutil"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	studentID := uuid.New()
	admin := policy.Identity{Role: entity.RoleAdmin}
	warden := policy.Identity{Role: entity.RoleWarden, HostelBlock: "A"}
	student := policy.Identity{Role: entity.RoleStudent, StudentID: &studentID, HostelBlock: "A"}

	t.Run("admin is unrestricted", func(t *testing.T) {
		for _, kind := range []policy.Kind{policy.KindComplaint, policy.KindInvoice, policy.KindWarden, policy.KindMessMenu} {
			p, err := policy.Scope(admin, kind)
			require.NoError(t, err)
			assert.True(t, p.All, kind)
		}
	})

	t.Run("warden is limited to its block", func(t *testing.T) {
		p, err := policy.Scope(warden, policy.KindAttendance)
		require.NoError(t, err)
		assert.Equal(t, "A", p.HostelBlock)
		assert.False(t, p.All)

		p, err = policy.Scope(warden, policy.KindMessMenu)
		require.NoError(t, err)
		assert.True(t, p.All)

		_, err = policy.Scope(warden, policy.KindWarden)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("warden without profile is forbidden", func(t *testing.T) {
		_, err := policy.Scope(policy.Identity{Role: entity.RoleWarden}, policy.KindComplaint)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("student is limited to its own records", func(t *testing.T) {
		p, err := policy.Scope(student, policy.KindInvoice)
		require.NoError(t, err)
		require.NotNil(t, p.StudentID)
		assert.Equal(t, studentID, *p.StudentID)
		assert.Empty(t, p.HostelBlock)

		_, err = policy.Scope(policy.Identity{Role: entity.RoleStudent}, policy.KindInvoice)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		_, err := policy.Scope(policy.Identity{Role: "guest"}, policy.KindMessMenu)
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})
}

func TestPredicateAllows(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.True(t, policy.Predicate{All: true}.Allows(other, "Z"))
	assert.True(t, policy.Predicate{StudentID: &owner}.Allows(owner, "Z"))
	assert.False(t, policy.Predicate{StudentID: &owner}.Allows(other, "A"))
	assert.True(t, policy.Predicate{HostelBlock: "A"}.Allows(other, "A"))
	assert.False(t, policy.Predicate{HostelBlock: "A"}.Allows(owner, "B"))
	assert.False(t, policy.Predicate{}.Allows(owner, "A"))

	err := policy.Predicate{HostelBlock: "A"}.Check(owner, "B")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestPredicateOwnedFiltersRows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	a1 := testutil.CreateStudent(t, db, "a1@hostel.test", "A-1", "A")
	a2 := testutil.CreateStudent(t, db, "a2@hostel.test", "A-2", "A")
	b1 := testutil.CreateStudent(t, db, "b1@hostel.test", "B-1", "B")

	for _, u := range []*entity.User{a1, a2, b1} {
		require.NoError(t, db.Create(&entity.Complaint{
			StudentID:   u.StudentProfile.ID,
			Title:       "Broken fan",
			Description: "Fan in room does not spin",
			Category:    "Electrical",
		}).Error)
	}

	count := func(p policy.Predicate) int64 {
		var n int64
		require.NoError(t, db.WithContext(ctx).Model(&entity.Complaint{}).Scopes(p.Owned("student_id")).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(3), count(policy.Predicate{All: true}))
	assert.Equal(t, int64(2), count(policy.Predicate{HostelBlock: "A"}))
	assert.Equal(t, int64(1), count(policy.Predicate{HostelBlock: "B"}))
	assert.Equal(t, int64(0), count(policy.Predicate{HostelBlock: "C"}))

	own := a2.StudentProfile.ID
	assert.Equal(t, int64(1), count(policy.Predicate{StudentID: &own}))
	assert.Equal(t, int64(0), count(policy.Predicate{}))

	var profiles int64
	require.NoError(t, db.Model(&entity.StudentProfile{}).Scopes(policy.Predicate{HostelBlock: "A"}.Profiles()).Count(&profiles).Error)
	assert.Equal(t, int64(2), profiles)
}

func TestNewIdentity(t *testing.T) {
	db := testutil.NewDB(t)

	student := policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "R1", "C"))
	require.NotNil(t, student.StudentID)
	assert.Equal(t, "C", student.HostelBlock)
	assert.True(t, student.IsStudent())

	warden := policy.NewIdentity(testutil.CreateWarden(t, db, "w@hostel.test", "C"))
	require.NotNil(t, warden.WardenID)
	assert.Nil(t, warden.StudentID)
	assert.Equal(t, "C", warden.HostelBlock)
	assert.True(t, warden.IsStaff())

	admin := policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test"))
	assert.True(t, admin.IsAdmin())
	assert.Empty(t, admin.HostelBlock)
}
