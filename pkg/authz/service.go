package authz

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/sirupsen/logrus"
)

// Service answers a single declarative question: does this subject have the
// given capability over an object within a church domain. All route-level
// authorization goes through here instead of ad hoc per-handler checks.
type Service struct {
	cfg      Config
	enforcer *casbin.Enforcer
	logger   *logrus.Entry
	mu       sync.RWMutex
}

func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	enf, err := casbin.NewEnforcer(cfg.ModelPath, fileadapter.NewAdapter(cfg.PolicyPath))
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	if err := enf.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: failed to load policies: %w", err)
	}

	return &Service{
		cfg:      cfg,
		enforcer: enf,
		logger:   logger,
	}, nil
}

// Authorize returns ErrForbidden if the request is denied.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	allowed, err := s.Check(ctx, req)
	if err != nil {
		return err
	}
	if !allowed {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"subject": req.Subject,
			"domain":  req.Domain,
			"object":  req.Object,
			"action":  req.Action,
		}).Warn("authz denied request")
		return forbiddenError(req)
	}
	return nil
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.enforcer.Enforce(req.Subject, req.Domain, req.Object, req.Action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return res, nil
}

// Reload re-reads the policy file, replacing the in-memory policy set.
func (s *Service) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforcer.LoadPolicy()
}
