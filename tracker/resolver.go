// Package tracker is the session/visitor attribution pipeline: it turns an
// inbound tracking request into correctly linked visitor, session and event
// records.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"trackwise/api/models"
	"trackwise/api/store"
	"trackwise/api/uaparser"
	"trackwise/api/utils"
)

// ErrEnrichment marks a user-agent or geo lookup failure, as opposed to a
// storage failure. Both are terminal for the request.
var ErrEnrichment = errors.New("enrichment failed")

// VisitorRequest carries the identification inputs of one tracking request.
// SourceName and VisitorID are nil when the client did not send them.
type VisitorRequest struct {
	TrackingID string
	SourceName *string
	VisitorID  *string
	UserAgent  string
	Referer    string
}

// ResolvedVisitor is the outcome of visitor resolution: the tenant's and the
// visitor's internal keys plus the public visitor identifier to hand back to
// the client.
type ResolvedVisitor struct {
	TrackingKey int
	VisitorKey  int
	VisitorID   string
}

// VisitorResolver decides whether a request belongs to an existing visitor
// or must create one, attributing the visitor to a source on first sight.
type VisitorResolver struct {
	trackings  store.TrackingRepository
	sources    store.SourceRepository
	visitors   store.VisitorRepository
	classifier uaparser.Classifier
}

func NewVisitorResolver(trackings store.TrackingRepository, sources store.SourceRepository, visitors store.VisitorRepository, classifier uaparser.Classifier) *VisitorResolver {
	return &VisitorResolver{
		trackings:  trackings,
		sources:    sources,
		visitors:   visitors,
		classifier: classifier,
	}
}

// Resolve applies the attribution precedence:
//
//  1. the public tracking id must resolve to a tenant;
//  2. a supplied source name must exist for that tenant, no name means
//     direct traffic;
//  3. a supplied visitor id that resolves is returned as-is, with no
//     re-classification and no storage mutation;
//  4. otherwise (no id, or a stale/foreign one) the user agent is classified
//     and a fresh visitor row is persisted.
func (r *VisitorResolver) Resolve(ctx context.Context, req VisitorRequest) (ResolvedVisitor, error) {
	trackingKey, err := r.trackings.IDFromTrackingID(ctx, req.TrackingID)
	if err != nil {
		return ResolvedVisitor{}, fmt.Errorf("resolving tracking %q: %w", req.TrackingID, err)
	}

	var sourceKey *int
	if req.SourceName != nil {
		key, err := r.sources.IDFromSourceName(ctx, trackingKey, *req.SourceName)
		if err != nil {
			return ResolvedVisitor{}, fmt.Errorf("resolving source %q: %w", *req.SourceName, err)
		}
		sourceKey = &key
	}

	if req.VisitorID != nil {
		key, err := r.visitors.IDFromVisitorID(ctx, *req.VisitorID)
		switch {
		case err == nil:
			return ResolvedVisitor{TrackingKey: trackingKey, VisitorKey: key, VisitorID: *req.VisitorID}, nil
		case errors.Is(err, store.ErrNotFound):
			// Stale or foreign visitor id: fall through to creation rather
			// than break tracking.
		default:
			return ResolvedVisitor{}, fmt.Errorf("resolving visitor: %w", err)
		}
	}

	classified, err := r.classifier.Classify(req.UserAgent)
	if err != nil {
		return ResolvedVisitor{}, fmt.Errorf("%w: classifying user agent: %v", ErrEnrichment, err)
	}

	visitor := newVisitor(trackingKey, sourceKey, req, classified)
	key, err := r.visitors.CreateVisitor(ctx, visitor)
	if err != nil {
		return ResolvedVisitor{}, fmt.Errorf("creating visitor: %w", err)
	}

	return ResolvedVisitor{TrackingKey: trackingKey, VisitorKey: key, VisitorID: visitor.VisitorID}, nil
}

func newVisitor(trackingKey int, sourceKey *int, req VisitorRequest, classified uaparser.UserAgent) *models.NewVisitor {
	return &models.NewVisitor{
		VisitorID:  utils.GenerateID(),
		TrackingID: trackingKey,
		SourceID:   sourceKey,
		Referer:    req.Referer,
		UserAgent:  req.UserAgent,
		UADevice:   classified.Device,
		UAOS:       classified.OS,
		UABrowser:  classified.Browser,
	}
}
