package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookwish/internal/catalog"
	"bookwish/internal/domain"
	"bookwish/internal/logger"
	"bookwish/internal/notify"
	"bookwish/internal/policy"
	"bookwish/internal/store"
	"bookwish/internal/worker"
)

// ErrForbidden is returned when the caller's trust level does not allow the
// requested action.
var ErrForbidden = errors.New("forbidden")

// RequestService composes the catalog, the request store, the quality
// policy, and background work into the search and submit flows.
type RequestService struct {
	DB       *store.DB
	Provider catalog.Provider
	Quality  *policy.QualityConfig
	Fanout   *notify.Fanout
	Pool     *worker.Pool
	Logger   *logger.Logger
}

func NewRequestService(db *store.DB, provider catalog.Provider, quality *policy.QualityConfig, fanout *notify.Fanout, pool *worker.Pool, log *logger.Logger) *RequestService {
	return &RequestService{
		DB:       db,
		Provider: provider,
		Quality:  quality,
		Fanout:   fanout,
		Pool:     pool,
		Logger:   log.WithComponent("requests"),
	}
}

// SearchPage is the computed result set handed to the presentation layer.
type SearchPage struct {
	Query        string
	Region       string
	Page         int
	NumResults   int
	Results      []domain.Book
	AutoDownload bool
}

// Search queries the catalog and annotates each hit with whether the user
// has already requested it. An empty query skips the catalog entirely.
func (s *RequestService) Search(ctx context.Context, user *domain.User, query string, page, numResults int, region string) (*SearchPage, error) {
	if !catalog.ValidRegion(region) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrInvalidRegion, region)
	}

	var results []domain.Book
	if query != "" {
		var err error
		results, err = s.Provider.Search(ctx, query, page, numResults, region)
		if err != nil {
			return nil, err
		}
	}

	results, err := s.annotateRequested(ctx, user.Username, results)
	if err != nil {
		return nil, err
	}

	autoDownload, err := s.Quality.AutoDownloadEnabled(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	return &SearchPage{
		Query:        query,
		Region:       region,
		Page:         page,
		NumResults:   numResults,
		Results:      results,
		AutoDownload: autoDownload && user.Group.AtLeast(domain.GroupTrusted),
	}, nil
}

// annotateRequested tags hits already requested by the user. One storage
// round-trip for the whole batch; an empty batch issues no query.
func (s *RequestService) annotateRequested(ctx context.Context, username string, results []domain.Book) ([]domain.Book, error) {
	if len(results) == 0 {
		return results, nil
	}

	asins := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, b := range results {
		if !seen[b.ASIN] {
			seen[b.ASIN] = true
			asins = append(asins, b.ASIN)
		}
	}

	requested, err := s.DB.ListRequestedASINs(ctx, username, asins)
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].AlreadyRequested = requested[results[i].ASIN]
	}
	return results, nil
}

// Submit runs the request-submission flow: resolve the book, persist the
// request, evaluate the auto-download policy, and fan out notifications.
// Persist happens-before the policy read happens-before notification
// scheduling. The background enqueues run in the same synchronous
// continuation as the commit, under a context detached from the caller's,
// so a cancelled HTTP request cannot drop committed work.
func (s *RequestService) Submit(ctx context.Context, user *domain.User, asin string) error {
	book, err := s.Provider.Lookup(ctx, asin)
	if err != nil {
		return err
	}

	req := &domain.BookRequest{
		ID:        uuid.New().String(),
		ASIN:      book.ASIN,
		Username:  user.Username,
		Title:     book.Title,
		Subtitle:  book.Subtitle,
		Authors:   book.Authors,
		Narrators: book.Narrators,
		CoverURL:  book.CoverURL,
		CreatedAt: time.Now(),
	}

	var autoDownload bool
	err = s.DB.RunInTx(ctx, func(tx *store.DB) error {
		created, err := tx.CreateRequest(ctx, req)
		if err != nil {
			return err
		}
		if !created {
			s.Logger.WithUser(user.Username).Info("Book already requested", "asin", asin)
		}

		autoDownload, err = s.Quality.AutoDownloadEnabled(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	// The row is committed; nothing past this point may be lost to the
	// caller hanging up.
	bg := context.WithoutCancel(ctx)

	if autoDownload {
		job := worker.Job{
			ID:   uuid.New().String(),
			Type: domain.JobTypeDownload,
			Payload: DownloadOrder{
				ASIN:             book.ASIN,
				Title:            book.Title,
				StartImmediately: user.Group.AtLeast(domain.GroupTrusted),
			},
		}
		if err := s.Pool.Enqueue(job); err != nil {
			s.Logger.Error("Failed to enqueue download", "asin", asin, "error", err)
		}
	}

	snap := domain.RequestSnapshot{
		Event:     domain.EventOnNewRequest,
		ASIN:      book.ASIN,
		Title:     book.Title,
		Authors:   book.Authors,
		Narrators: book.Narrators,
		Requester: user.Username,
	}
	if err := s.Fanout.Dispatch(bg, s.DB, domain.EventOnNewRequest, snap); err != nil {
		s.Logger.Error("Notification fanout failed", "asin", asin, "error", err)
	}

	s.Logger.WithUser(user.Username).Info("Request submitted", "asin", asin, "title", book.Title, "auto_download", autoDownload)
	return nil
}

// ManualFields carries the free-text form input for a manual request.
// Author and narrator are comma-delimited lists.
type ManualFields struct {
	Title       string `form:"title"`
	Author      string `form:"author"`
	Narrator    string `form:"narrator"`
	Subtitle    string `form:"subtitle"`
	PublishDate string `form:"publish_date"`
	Info        string `form:"info"`
}

// SubmitManual persists a request with no catalog correlation and fans out
// notifications carrying the full snapshot.
func (s *RequestService) SubmitManual(ctx context.Context, user *domain.User, fields ManualFields) (*domain.ManualBookRequest, error) {
	req := &domain.ManualBookRequest{
		ID:             uuid.New().String(),
		Username:       user.Username,
		Title:          fields.Title,
		Subtitle:       fields.Subtitle,
		Authors:        domain.SplitList(fields.Author),
		Narrators:      domain.SplitList(fields.Narrator),
		PublishDate:    fields.PublishDate,
		AdditionalInfo: fields.Info,
		CreatedAt:      time.Now(),
	}

	if err := s.DB.CreateManualRequest(ctx, req); err != nil {
		return nil, err
	}

	snap := domain.RequestSnapshot{
		Event:     domain.EventOnNewRequest,
		Title:     req.Title,
		Authors:   req.Authors,
		Narrators: req.Narrators,
		Requester: user.Username,
		Manual:    true,
	}
	bg := context.WithoutCancel(ctx)
	if err := s.Fanout.Dispatch(bg, s.DB, domain.EventOnNewRequest, snap); err != nil {
		s.Logger.Error("Notification fanout failed", "title", req.Title, "error", err)
	}

	s.Logger.WithUser(user.Username).Info("Manual request submitted", "title", req.Title)
	return req, nil
}

// Delete removes every request row for the book, across all users, and
// returns the refreshed listing for the caller's current view. Admin only.
func (s *RequestService) Delete(ctx context.Context, user *domain.User, asin string, downloaded bool) ([]*domain.BookRequest, error) {
	if !user.Group.AtLeast(domain.GroupAdmin) {
		return nil, ErrForbidden
	}

	count, err := s.DB.DeleteRequestsByASIN(ctx, asin)
	if err != nil {
		return nil, err
	}
	s.Logger.WithUser(user.Username).Info("Requests deleted", "asin", asin, "count", count)

	return s.DB.ListRequests(ctx, downloaded)
}
