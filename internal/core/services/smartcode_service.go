package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/utils/smartcode"
)

// smartCodeService resolves codes against the registry. Entries are cached in
// memory; Reload refreshes the cache after registry writes.
type smartCodeService struct {
	BaseService
	smartCodeRepo portsrepo.SmartCodeRepositoryFacade

	mu        sync.RWMutex
	behaviors map[string]domain.SmartCodeBehavior // keyed by registry prefix
	exclusive map[string]struct{}                 // relationship types with single-active-edge semantics
}

// NewSmartCodeService creates a new SmartCodeService. The registry cache starts
// empty; callers load it with Reload at startup.
func NewSmartCodeService(smartCodeRepo portsrepo.SmartCodeRepositoryFacade) portssvc.SmartCodeSvcFacade {
	return &smartCodeService{
		smartCodeRepo: smartCodeRepo,
		behaviors:     map[string]domain.SmartCodeBehavior{},
		exclusive:     map[string]struct{}{},
	}
}

// Ensure smartCodeService implements the portssvc.SmartCodeSvcFacade interface
var _ portssvc.SmartCodeSvcFacade = (*smartCodeService)(nil)

// Behavior parses the code and merges the behavior descriptors of every
// registered prefix matching it, shortest first, so longer prefixes override
// shorter ones field by field. Unregistered families get the zero descriptor.
func (s *smartCodeService) Behavior(ctx context.Context, code string) (domain.SmartCodeBehavior, error) {
	parsed, err := smartcode.Parse(code)
	if err != nil {
		return domain.SmartCodeBehavior{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]string, 0, 2)
	for prefix := range s.behaviors {
		if strings.HasPrefix(parsed.Raw, prefix+".") || parsed.Raw == prefix {
			matching = append(matching, prefix)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return len(matching[i]) < len(matching[j]) })

	var merged domain.SmartCodeBehavior
	for _, prefix := range matching {
		b := s.behaviors[prefix]
		if b.LedgerTyped {
			merged.LedgerTyped = true
		}
		if b.DocType != "" {
			merged.DocType = b.DocType
		}
		if len(b.RequiredFields) > 0 {
			merged.RequiredFields = b.RequiredFields
		}
		merged.ExclusiveRelTypes = append(merged.ExclusiveRelTypes, b.ExclusiveRelTypes...)
	}
	return merged, nil
}

func (s *smartCodeService) IsExclusiveRelationship(ctx context.Context, relationshipType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.exclusive[relationshipType]
	return ok
}

func (s *smartCodeService) Register(ctx context.Context, entry domain.SmartCodeEntry, actorUserID string) error {
	if entry.Prefix == "" || !strings.HasPrefix(entry.Prefix, "HERA.") {
		return fmt.Errorf("%w: registry prefix must start with HERA.", smartcode.ErrMalformedPrefix)
	}
	if len(entry.Metadata) > 0 {
		var probe domain.SmartCodeBehavior
		if err := json.Unmarshal(entry.Metadata, &probe); err != nil {
			return fmt.Errorf("%w: %v", smartcode.ErrMalformedPrefix, err)
		}
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.CreatedBy = actorUserID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorUserID

	if err := s.smartCodeRepo.SaveSmartCodeEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to register smart code entry", slog.String("prefix", entry.Prefix))
		return fmt.Errorf("failed to register smart code entry %s: %w", entry.Prefix, err)
	}
	s.LogInfo(ctx, "Smart code entry registered", slog.String("prefix", entry.Prefix))
	return s.Reload(ctx)
}

// Reload replaces the in-memory registry cache with the current table contents.
func (s *smartCodeService) Reload(ctx context.Context) error {
	entries, err := s.smartCodeRepo.ListSmartCodeEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load smart code registry: %w", err)
	}

	behaviors := make(map[string]domain.SmartCodeBehavior, len(entries))
	exclusive := make(map[string]struct{})
	for _, entry := range entries {
		var b domain.SmartCodeBehavior
		if len(entry.Metadata) > 0 {
			if err := json.Unmarshal(entry.Metadata, &b); err != nil {
				s.LogError(ctx, err, "Skipping smart code entry with malformed metadata", slog.String("prefix", entry.Prefix))
				continue
			}
		}
		behaviors[entry.Prefix] = b
		for _, relType := range b.ExclusiveRelTypes {
			exclusive[relType] = struct{}{}
		}
	}

	s.mu.Lock()
	s.behaviors = behaviors
	s.exclusive = exclusive
	s.mu.Unlock()

	s.LogDebug(ctx, "Smart code registry loaded", slog.Int("entries", len(behaviors)))
	return nil
}
