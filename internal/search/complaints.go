// Package search keeps complaints in a meilisearch index and answers scoped
// full-text queries against it.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"anoa.com/hostelhub/internal/entity"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
)

const complaintsIndex = "complaints"

// ComplaintIndex is implemented by the meilisearch index. A nil ComplaintIndex
// means search falls back to the database.
type ComplaintIndex interface {
	Index(ctx context.Context, complaint *entity.Complaint) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, scope policy.Predicate, limit int) ([]uuid.UUID, error)
}

type complaintDoc struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	HostelBlock string `json:"hostel_block"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
}

type meiliComplaintIndex struct {
	client meilisearch.ServiceManager
}

// NewComplaintIndex configures the complaints index and returns it.
func NewComplaintIndex(client meilisearch.ServiceManager) ComplaintIndex {
	idx := &meiliComplaintIndex{client: client}
	idx.init()
	return idx
}

func (m *meiliComplaintIndex) init() {
	filterableAttrs := []string{"student_id", "hostel_block", "status", "category"}
	filterable := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterable[i] = v
	}
	if _, err := m.client.Index(complaintsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logrus.WithError(err).Warn("failed to update complaint filterable attributes")
	}

	sortable := []string{"created_at"}
	if _, err := m.client.Index(complaintsIndex).UpdateSortableAttributes(&sortable); err != nil {
		logrus.WithError(err).Warn("failed to update complaint sortable attributes")
	}
}

// Index upserts the complaint. Student must be loaded for the block filter.
func (m *meiliComplaintIndex) Index(_ context.Context, complaint *entity.Complaint) error {
	doc := complaintDoc{
		ID:          complaint.ID.String(),
		StudentID:   complaint.StudentID.String(),
		Title:       sanitize.Text(complaint.Title),
		Description: sanitize.Text(complaint.Description),
		Category:    complaint.Category,
		Status:      complaint.Status,
		CreatedAt:   complaint.CreatedAt.Unix(),
	}
	if complaint.Student != nil {
		doc.HostelBlock = complaint.Student.HostelBlock
	}

	task, err := m.client.Index(complaintsIndex).AddDocuments([]complaintDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index complaint: %w", err)
	}
	logrus.WithFields(logrus.Fields{"complaint_id": complaint.ID, "task_uid": task.TaskUID}).Debug("complaint indexed")
	return nil
}

func (m *meiliComplaintIndex) Delete(_ context.Context, id uuid.UUID) error {
	_, err := m.client.Index(complaintsIndex).DeleteDocument(id.String())
	return err
}

func (m *meiliComplaintIndex) Search(_ context.Context, query string, scope policy.Predicate, limit int) ([]uuid.UUID, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	if filter := ScopeFilter(scope); filter != "" {
		req.Filter = filter
	}

	resp, err := m.client.Index(complaintsIndex).Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("complaint search failed: %w", err)
	}

	// hits are decoded through JSON so the shape does not depend on the client version
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, err
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ScopeFilter renders a predicate as a meilisearch filter expression.
// An unrestricted predicate yields "".
func ScopeFilter(p policy.Predicate) string {
	switch {
	case p.All:
		return ""
	case p.StudentID != nil:
		return "student_id = " + strconv.Quote(p.StudentID.String())
	case p.HostelBlock != "":
		return "hostel_block = " + strconv.Quote(p.HostelBlock)
	}
	return "id = \"\""
}

func strPtr(s string) *string {
	return &s
}
