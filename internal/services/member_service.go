package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"churchledger/internal/core"
	"churchledger/internal/metrics"
	"churchledger/internal/storage"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberInput carries the raw form values of a member.
type MemberInput struct {
	Name       string
	Email      string
	Phone      string
	JoinedDate string
}

type MemberService struct {
	store   *storage.Store
	metrics *metrics.Metrics
}

func NewMemberService(store *storage.Store, m *metrics.Metrics) *MemberService {
	return &MemberService{store: store, metrics: m}
}

func (s *MemberService) List(ctx context.Context) ([]core.Member, error) {
	var members []core.Member
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		members, err = q.ListMembers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Add registers an active member.
func (s *MemberService) Add(ctx context.Context, in MemberInput) (core.Member, error) {
	m := core.Member{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		JoinedDate: strings.TrimSpace(in.JoinedDate),
		Active:     true,
	}
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		id, err := q.CreateMember(ctx, m)
		m.ID = id
		return err
	})
	if err != nil {
		return core.Member{}, fmt.Errorf("add member: %w", err)
	}
	s.metrics.EntryRecorded("member")
	return m, nil
}

// Toggle flips a member between active and inactive.
func (s *MemberService) Toggle(ctx context.Context, id int64) error {
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		return q.ToggleMember(ctx, id)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("toggle member: %w", err)
	}
	return nil
}
