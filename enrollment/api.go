package enrollment

import (
	"context"
	"fmt"
	"sort"

	"github.com/jrsteele09/go-enrollment-client/httpclient"
	"github.com/jrsteele09/go-enrollment-client/internal/errors"
)

// EnrollmentResource adds the status transitions clearing officers and
// admins perform on enrollment records.
type EnrollmentResource struct {
	*Resource[Enrollment]
}

type statusUpdate struct {
	Status  Status `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// SetStatus moves an enrollment to status. Remarks are required when
// rejecting.
func (r *EnrollmentResource) SetStatus(ctx context.Context, id string, status Status, remarks string) (*Enrollment, error) {
	if !status.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[enrollment SetStatus] unknown status %q", status)
	}
	if status == StatusRejected && remarks == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[enrollment SetStatus] rejecting needs remarks")
	}
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}

	var out Enrollment
	if err := r.client.Patch(ctx, path+"/status", statusUpdate{Status: status, Remarks: remarks}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// API groups the backend collections behind one authenticated client.
type API struct {
	Students         *Resource[Student]
	ClearingOfficers *Resource[ClearingOfficer]
	Courses          *Resource[Course]
	Sections         *Resource[Section]
	Semesters        *Resource[Semester]
	Enrollments      *EnrollmentResource
}

func NewAPI(client *httpclient.Client) *API {
	return &API{
		Students:         NewResource[Student](client, "/students"),
		ClearingOfficers: NewResource[ClearingOfficer](client, "/clearing-officers"),
		Courses:          NewResource[Course](client, "/courses"),
		Sections:         NewResource[Section](client, "/sections"),
		Semesters:        NewResource[Semester](client, "/semesters"),
		Enrollments:      &EnrollmentResource{NewResource[Enrollment](client, "/enrollments")},
	}
}

// Lister is the untyped view of a collection used by generic callers such as
// the CLI's list command.
type Lister interface {
	ListAny(ctx context.Context) ([]any, error)
}

func (r *Resource[T]) ListAny(ctx context.Context) ([]any, error) {
	items, err := r.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out, nil
}

// Collections maps the names accepted on the command line to their listers.
func (a *API) Collections() map[string]Lister {
	return map[string]Lister{
		"students":          a.Students,
		"clearing-officers": a.ClearingOfficers,
		"courses":           a.Courses,
		"sections":          a.Sections,
		"semesters":         a.Semesters,
		"enrollments":       a.Enrollments,
	}
}

// Collection looks up a lister by name.
func (a *API) Collection(name string) (Lister, error) {
	if l, ok := a.Collections()[name]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("unknown resource %q (one of %v): %w", name, a.CollectionNames(), errors.ErrUnsupported)
}

func (a *API) CollectionNames() []string {
	names := make([]string, 0, 6)
	for name := range a.Collections() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
