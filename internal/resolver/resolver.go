package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/ctrlmap-tools/cmapsync/internal/client"
	"github.com/ctrlmap-tools/cmapsync/internal/converter"
	"github.com/ctrlmap-tools/cmapsync/internal/domain"
	"github.com/ctrlmap-tools/cmapsync/internal/utils"
)

// Resolver turns one domain's remote listing into a fully resolved
// document graph. Items are resolved strictly sequentially in listing
// order; a failing item is recorded as skipped and never aborts the
// domain, while auth and connectivity failures do.
type Resolver struct {
	transport    domain.Transport
	converter    *converter.Converter
	retrier      *client.Retrier
	logger       *utils.Logger
	showProgress bool
}

// Options configures a Resolver. Zero values are usable: a nop logger,
// no retries, no progress output.
type Options struct {
	Converter    *converter.Converter
	Retrier      *client.Retrier
	Logger       *utils.Logger
	ShowProgress bool
}

// New creates a Resolver over the given transport.
func New(transport domain.Transport, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	conv := opts.Converter
	if conv == nil {
		conv = converter.New(logger)
	}
	return &Resolver{
		transport:    transport,
		converter:    conv,
		retrier:      opts.Retrier,
		logger:       logger.WithComponent("resolver"),
		showProgress: opts.ShowProgress,
	}
}

// Resolve exports one domain's document graph. The returned error is
// non-nil only for domain-fatal failures (authentication, connectivity);
// item-level failures land in ExportResult.Skipped.
func (r *Resolver) Resolve(ctx context.Context, kind domain.Kind) (*domain.ExportResult, error) {
	desc, ok := DescriptorFor(kind)
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", kind)
	}
	logger := r.logger.WithDomain(string(kind))

	stubs, err := r.listStubs(ctx, desc)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("items", len(stubs)).Msg("listing complete")

	result := &domain.ExportResult{Domain: kind}

	var bar *progressbar.ProgressBar
	if r.showProgress {
		bar = utils.NewProgressBar(len(stubs), utils.DescResolving)
	}

	for _, stub := range stubs {
		doc, err := r.resolveItem(ctx, desc, stub)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			if domain.IsDomainFatal(err) {
				return nil, err
			}
			logger.Warn().Str("id", stub.ID).Err(err).Msg("item skipped")
			result.Skipped = append(result.Skipped, domain.SkippedItem{
				ID:     stub.ID,
				Reason: domain.UserMessage(err),
			})
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return result, nil
}

// listStubs pages through the listing endpoint and keeps listing order.
func (r *Resolver) listStubs(ctx context.Context, desc Descriptor) ([]domain.Stub, error) {
	var rules []client.Rule
	if desc.TypeFilter != "" {
		rules = client.TypeRule(desc.TypeFilter)
	}

	var pages []json.RawMessage
	err := r.retry(ctx, func() error {
		var err error
		pages, err = client.ListAll(ctx, r.transport, desc.ListPath, rules)
		return err
	})
	if err != nil {
		return nil, err
	}

	var stubs []domain.Stub
	for _, raw := range pages {
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		id := itemID(item["id"])
		if id == "" {
			continue
		}
		stubs = append(stubs, domain.Stub{
			ID:    id,
			Title: asString(item["name"]),
		})
	}
	return stubs, nil
}

func (r *Resolver) resolveItem(ctx context.Context, desc Descriptor, stub domain.Stub) (*domain.Document, error) {
	detailPath := fmt.Sprintf(desc.DetailPath, stub.ID)

	var detail map[string]any
	err := r.retry(ctx, func() error {
		return r.transport.GetJSON(ctx, detailPath, &detail)
	})
	if err != nil {
		return nil, err
	}

	doc := desc.parse(r.converter, detail)
	if doc.ID == "" {
		doc.ID = stub.ID
	}
	if doc.Title == "" {
		doc.Title = stub.Title
	}

	for _, relKind := range desc.Relations {
		relations, err := r.fetchRelations(ctx, detailPath, relKind)
		if err != nil {
			if domain.IsDomainFatal(err) {
				return nil, err
			}
			// Degrade: keep the edge without a resolved target.
			r.logger.Warn().
				Str("id", stub.ID).
				Str("relation", string(relKind)).
				Err(err).
				Msg("related-entity fetch failed")
			doc.Relations = append(doc.Relations, domain.Relation{Kind: relKind})
			continue
		}
		doc.Relations = append(doc.Relations, relations...)
	}

	return doc, nil
}

func (r *Resolver) fetchRelations(ctx context.Context, detailPath string, kind domain.RelationKind) ([]domain.Relation, error) {
	path := detailPath + "/" + relationPath(kind)

	var items []map[string]any
	err := r.retry(ctx, func() error {
		return r.transport.GetJSON(ctx, path, &items)
	})
	if err != nil {
		return nil, err
	}

	codeKeys := relationCodeKeys(kind)
	var relations []domain.Relation
	for _, item := range items {
		relations = append(relations, domain.Relation{
			Kind:        kind,
			TargetID:    itemID(item["id"]),
			TargetTitle: firstString(item, codeKeys...),
		})
	}
	return relations, nil
}

func (r *Resolver) retry(ctx context.Context, op func() error) error {
	if r.retrier == nil {
		return op()
	}
	return r.retrier.Do(ctx, op)
}
