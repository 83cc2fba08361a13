// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/manuscript-engine/internal/httputil"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// doiBase is the identifier-resolution endpoint. Declared as a var so
// tests can substitute an httptest server.
var doiBase = "https://doi.org/"

// parenYear matches a publication year in parentheses: "Smith (2020)".
var parenYear = regexp.MustCompile(`\((\d{4})\)`)

// bareYear matches any standalone four-digit year.
var bareYear = regexp.MustCompile(`\b(\d{4})\b`)

// Validator annotates evidence records with DOI resolvability, age
// classification, and a retention action.
type Validator struct {
	client *http.Client
	cfg    types.ValidationConfig

	// now is the validation clock, overridable in tests.
	now func() time.Time
}

// NewValidator builds a validator. Zero config fields fall back to the
// documented defaults.
func NewValidator(client *http.Client, cfg types.ValidationConfig) *Validator {
	def := types.DefaultEngineConfig().Validation
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BatchDeadline <= 0 {
		cfg.BatchDeadline = def.BatchDeadline
	}
	if cfg.FreshYears <= 0 {
		cfg.FreshYears = def.FreshYears
	}
	if cfg.StaleYears <= 0 {
		cfg.StaleYears = def.StaleYears
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Validator{client: client, cfg: cfg, now: time.Now}
}

// Validate annotates every record and returns the annotated set in input
// order with summary counts. DOI checks run on a bounded worker pool
// under an overall batch deadline: a slow or failing check degrades that
// single record to unknown without aborting the batch, and any check not
// finished by the deadline finalizes as unknown. The batch always
// terminates with a complete, if partially degraded, report.
//
// The retention policy is a total function of the two classifications:
// remove iff the DOI is invalid; review iff not invalid and the record is
// stale or old; keep otherwise. Freshness alone never removes a record.
func (v *Validator) Validate(ctx context.Context, records []types.EvidenceRecord, w io.Writer) ([]types.EvidenceRecord, types.ValidationSummary, error) {
	out := make([]types.EvidenceRecord, len(records))
	copy(out, records)

	ctx, cancel := context.WithTimeout(ctx, v.cfg.BatchDeadline)
	defer cancel()

	// Fan DOI checks out to the worker pool. Completion order is
	// irrelevant: each worker writes only its own index.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < v.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i].DOIStatus = v.checkDOI(ctx, out[i].DOI)
			}
		}()
	}
	for i := range out {
		if NormalizedDOI(out[i].DOI) == "" {
			out[i].DOIStatus = types.DOIUnknown
			continue
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Deadline hit: everything not yet dispatched
			// finalizes as unknown.
			out[i].DOIStatus = types.DOIUnknown
		}
	}
	close(jobs)
	wg.Wait()

	summary := types.ValidationSummary{Total: len(out), ValidatedAt: v.now()}
	for i := range out {
		v.annotate(&out[i])
		switch out[i].Action {
		case types.ActionRemove:
			summary.ToRemove++
		case types.ActionReview:
			summary.NeedsReview++
		default:
			summary.Kept++
		}
		if out[i].DOIStatus == types.DOIUnknown {
			summary.Unchecked++
		}
		fmt.Fprintf(w, "%s: doi=%s freshness=%s action=%s (%s)\n",
			out[i].CitationKey, out[i].DOIStatus, out[i].Freshness, out[i].Action, out[i].Reason)
	}
	return out, summary, nil
}

// checkDOI issues an existence check for one identifier: 2xx is valid,
// 404 is invalid, anything else (including timeouts) is unknown.
func (v *Validator) checkDOI(ctx context.Context, doi string) types.DOIStatus {
	reqCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, doiBase+NormalizedDOI(doi), nil)
	if err != nil {
		return types.DOIUnknown
	}
	req.Header.Set("User-Agent", v.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(reqCtx, v.client, req, 0)
	if err != nil {
		return types.DOIUnknown
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return types.DOIValid
	case resp.StatusCode == http.StatusNotFound:
		return types.DOIInvalid
	default:
		return types.DOIUnknown
	}
}

// annotate fills freshness, action, and reason from the record's DOI
// status and citation year.
func (v *Validator) annotate(r *types.EvidenceRecord) {
	var reasons []string

	switch r.DOIStatus {
	case types.DOIInvalid:
		reasons = append(reasons, "DOI does not resolve")
	case types.DOIUnknown:
		if NormalizedDOI(r.DOI) == "" {
			reasons = append(reasons, "no DOI to check")
		} else {
			reasons = append(reasons, "DOI check did not complete")
		}
	}

	year, found := extractYear(r.Citation)
	age := 0
	if found {
		age = v.now().Year() - year
	}
	switch {
	case age >= v.cfg.StaleYears:
		r.Freshness = types.FreshnessOld
	case age >= v.cfg.FreshYears:
		r.Freshness = types.FreshnessStale
	default:
		r.Freshness = types.FreshnessFresh
	}
	if r.Freshness != types.FreshnessFresh {
		reasons = append(reasons, fmt.Sprintf("published %d years ago", age))
	}

	// Removal follows from an invalid DOI and nothing else; an unknown
	// DOI keeps the record, flagged for review only when it is aging.
	switch {
	case r.DOIStatus == types.DOIInvalid:
		r.Action = types.ActionRemove
	case r.Freshness != types.FreshnessFresh:
		r.Action = types.ActionReview
	default:
		r.Action = types.ActionKeep
	}

	if len(reasons) == 0 {
		r.Reason = "valid"
	} else {
		r.Reason = strings.Join(reasons, "; ")
	}
}

// extractYear pulls a publication year from citation text, preferring the
// parenthesized form.
func extractYear(citation string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{parenYear, bareYear} {
		if m := pattern.FindStringSubmatch(citation); m != nil {
			year, err := strconv.Atoi(m[1])
			if err == nil && year >= 1800 && year <= 2200 {
				return year, true
			}
		}
	}
	return 0, false
}
