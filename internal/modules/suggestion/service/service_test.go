package suggestion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/hostelhub/internal/entity"
	notifRepo "anoa.com/hostelhub/internal/modules/notification/repository"
	notification "anoa.com/hostelhub/internal/modules/notification/service"
	"anoa.com/hostelhub/internal/modules/suggestion/dto"
	"anoa.com/hostelhub/internal/modules/suggestion/repository"
	suggestion "anoa.com/hostelhub/internal/modules/suggestion/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/internal/testutil"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc      suggestion.SuggestionService
	notifier notification.NotificationService
	student  policy.Identity
	blockB   policy.Identity
	wardenA  policy.Identity
	wardenB  policy.Identity
	admin    policy.Identity
}

func setup(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)

	return &fixture{
		svc:      suggestion.NewSuggestionService(repository.NewSuggestionRepository(db), notifier, rdb, nil, 30*time.Second),
		notifier: notifier,
		student:  policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A")),
		blockB:   policy.NewIdentity(testutil.CreateStudent(t, db, "b@hostel.test", "B-1", "B")),
		wardenA:  policy.NewIdentity(testutil.CreateWarden(t, db, "wa@hostel.test", "A")),
		wardenB:  policy.NewIdentity(testutil.CreateWarden(t, db, "wb@hostel.test", "B")),
		admin:    policy.NewIdentity(testutil.CreateAdmin(t, db, "admin@hostel.test")),
	}
}

func submit(t *testing.T, f *fixture, id policy.Identity, title string) *entity.Suggestion {
	t.Helper()
	s, err := f.svc.Create(context.Background(), id, dto.CreateSuggestionRequest{
		Title: title, Description: "It would help everyone", Category: "Facilities",
	})
	require.NoError(t, err)
	return s
}

func TestSuggestionLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s := submit(t, f, f.student, "Water cooler on floor 2")
	assert.Equal(t, entity.TicketPending, s.Status)

	_, err := f.svc.Create(ctx, f.student, dto.CreateSuggestionRequest{Title: "x", Description: "y", Category: "Food"})
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))

	t.Run("comments", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, f.blockB, s.ID, dto.CommentRequest{Text: "me too"})
		assert.True(t, errors.Is(err, apperror.ErrForbidden))

		withComment, err := f.svc.AddComment(ctx, f.wardenA, s.ID, dto.CommentRequest{Text: "Looking into it"})
		require.NoError(t, err)
		require.Len(t, withComment.Comments, 1)
		assert.Equal(t, "Looking into it", withComment.Comments[0].Text)
		require.NotNil(t, withComment.Comments[0].User)
		assert.Equal(t, f.wardenA.UserID, withComment.Comments[0].User.ID)

		withComment, err = f.svc.AddComment(ctx, f.student, s.ID, dto.CommentRequest{Text: "Thanks"})
		require.NoError(t, err)
		assert.Len(t, withComment.Comments, 2)
	})

	t.Run("respond keeps the status", func(t *testing.T) {
		_, err := f.svc.Respond(ctx, f.wardenB, s.ID, dto.RespondRequest{Response: "no"})
		assert.True(t, errors.Is(err, apperror.ErrForbidden))

		responded, err := f.svc.Respond(ctx, f.wardenA, s.ID, dto.RespondRequest{Response: "Approved for next term"})
		require.NoError(t, err)
		assert.Equal(t, entity.TicketPending, responded.Status)
		require.NotNil(t, responded.Response)
		assert.Equal(t, "Approved for next term", *responded.Response)
		assert.Equal(t, f.wardenA.UserID, *responded.RespondedBy)
	})

	t.Run("open list and count", func(t *testing.T) {
		open, err := f.svc.GetOpen(ctx, f.wardenA)
		require.NoError(t, err)
		assert.Len(t, open, 1)

		count, err := f.svc.CountOpen(ctx, f.wardenA)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = f.svc.CountOpen(ctx, f.wardenB)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("status workflow", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, f.student, s.ID, dto.UpdateStatusRequest{Status: entity.TicketResolved})
		assert.True(t, errors.Is(err, apperror.ErrForbidden))

		done, err := f.svc.UpdateStatus(ctx, f.admin, s.ID, dto.UpdateStatusRequest{Status: entity.TicketRejected})
		require.NoError(t, err)
		assert.Equal(t, entity.TicketRejected, done.Status)
		assert.Equal(t, f.admin.UserID, *done.RespondedBy)

		_, err = f.svc.UpdateStatus(ctx, f.admin, s.ID, dto.UpdateStatusRequest{Status: entity.TicketPending})
		assert.True(t, errors.Is(err, apperror.ErrConflict))

		count, err := f.svc.CountOpen(ctx, f.wardenA)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("student cannot withdraw a processed suggestion", func(t *testing.T) {
		err := f.svc.Delete(ctx, f.student, s.ID)
		assert.True(t, errors.Is(err, apperror.ErrConflict))

		require.NoError(t, f.svc.Delete(ctx, f.admin, s.ID))
		_, err = f.svc.GetByID(ctx, f.admin, s.ID)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})

	unread, err := f.notifier.UnreadCount(ctx, f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestSuggestionVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mine := submit(t, f, f.student, "Late library hours")
	submit(t, f, f.blockB, "Gym equipment")

	_, err := f.svc.GetByID(ctx, f.blockB, mine.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	all, err := f.svc.GetAll(ctx, f.admin, dto.SuggestionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	blockA, err := f.svc.GetAll(ctx, f.wardenA, dto.SuggestionFilter{Category: "Facilities"})
	require.NoError(t, err)
	require.Len(t, blockA, 1)
	assert.Equal(t, mine.ID, blockA[0].ID)

	own, err := f.svc.GetAll(ctx, f.student, dto.SuggestionFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	require.NoError(t, f.svc.Delete(ctx, f.student, mine.ID))
}

// moveOnRead changes the stored status right after the service has read the
// suggestion, as a concurrent staff update would.
type moveOnRead struct {
	repository.SuggestionRepository
	db *gorm.DB
	to string
}

func (r *moveOnRead) FindByID(ctx context.Context, id uuid.UUID) (*entity.Suggestion, error) {
	s, err := r.SuggestionRepository.FindByID(ctx, id)
	if err != nil || r.to == "" {
		return s, err
	}
	if err := r.db.Model(&entity.Suggestion{}).Where("id = ?", id).Update("status", r.to).Error; err != nil {
		return nil, err
	}
	r.to = ""
	return s, nil
}

func TestSuggestionStatusChangedUnderneath(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	repo := &moveOnRead{SuggestionRepository: repository.NewSuggestionRepository(db), db: db}
	svc := suggestion.NewSuggestionService(repo, notifier, nil, nil, 0)

	student := policy.NewIdentity(testutil.CreateStudent(t, db, "s@hostel.test", "A-1", "A"))
	warden := policy.NewIdentity(testutil.CreateWarden(t, db, "wa@hostel.test", "A"))

	create := func(title string) *entity.Suggestion {
		s, err := svc.Create(ctx, student, dto.CreateSuggestionRequest{
			Title: title, Description: "It would help everyone", Category: "Food",
		})
		require.NoError(t, err)
		return s
	}
	stored := func(id uuid.UUID) *entity.Suggestion {
		var s entity.Suggestion
		require.NoError(t, db.Preload("Comments").First(&s, "id = ?", id).Error)
		return &s
	}

	t.Run("withdraw after processing started", func(t *testing.T) {
		s := create("More fruit")
		_, err := svc.AddComment(ctx, warden, s.ID, dto.CommentRequest{Text: "Looking into it"})
		require.NoError(t, err)
		repo.to = entity.TicketInProgress

		err = svc.Delete(ctx, student, s.ID)
		assert.True(t, errors.Is(err, apperror.ErrConflict))

		kept := stored(s.ID)
		assert.Equal(t, entity.TicketInProgress, kept.Status)
		assert.Len(t, kept.Comments, 1)
	})

	t.Run("terminal state is not overwritten", func(t *testing.T) {
		s := create("Sunday brunch")
		repo.to = entity.TicketRejected

		_, err := svc.UpdateStatus(ctx, warden, s.ID, dto.UpdateStatusRequest{Status: entity.TicketResolved})
		assert.True(t, errors.Is(err, apperror.ErrConflict))
		assert.Equal(t, entity.TicketRejected, stored(s.ID).Status)
	})

	t.Run("response keeps the current status", func(t *testing.T) {
		s := create("Salad bar")
		repo.to = entity.TicketResolved

		_, err := svc.Respond(ctx, warden, s.ID, dto.RespondRequest{Response: "Starting next week"})
		require.NoError(t, err)

		kept := stored(s.ID)
		assert.Equal(t, entity.TicketResolved, kept.Status)
		require.NotNil(t, kept.Response)
		assert.Equal(t, "Starting next week", *kept.Response)
	})
}
