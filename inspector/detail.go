package inspector

import (
	"context"
	"sync"

	"github.com/hazyhaar/domscope/style"
)

// ElementDetail combines everything the detail view needs for one
// node. The two underlying fetches run back-to-back without ordering
// guarantees, so a document mutating mid-flight can leave computed
// style and matched rules describing slightly different instants.
// That weak consistency is the contract: there is no lock to take on
// an external document.
type ElementDetail struct {
	Computed *style.ComputedStyle `json:"computed,omitempty"`
	BoxModel *style.BoxModel      `json:"boxModel,omitempty"`
	Rules    style.Resolution     `json:"rules"`
	Groups   []style.RuleGroup    `json:"groups"`
}

// ResolveElementDetail fetches computed style and matched rules for
// the node at path, awaiting both before combining. Per-fetch failures
// degrade to the affected part being absent; only a failure of both
// surfaces as an error.
func (in *Inspector) ResolveElementDetail(ctx context.Context, path []int) (*ElementDetail, error) {
	var (
		wg       sync.WaitGroup
		computed *style.ComputedStyle
		compErr  error
		rules    style.Resolution
		rulesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		computed, compErr = in.FetchComputedStyle(ctx, path)
	}()
	go func() {
		defer wg.Done()
		rules, rulesErr = in.FetchMatchedRules(ctx, path)
	}()
	wg.Wait()

	if compErr != nil && rulesErr != nil {
		return nil, rulesErr
	}
	if compErr != nil {
		in.logger.Warn("inspector: computed style unavailable", "error", compErr)
		computed = nil
	}
	if rulesErr != nil {
		in.logger.Warn("inspector: matched rules unavailable", "error", rulesErr)
		rules = style.Resolution{}
	}

	detail := &ElementDetail{
		Computed: computed,
		Rules:    rules,
		Groups:   rules.Group(),
	}
	if computed != nil {
		detail.BoxModel = computed.BoxModel
	}
	return detail, nil
}
