package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/OpenSAMS/sams/internal/household/model"
)

const minNationalIDQueryLength = 3

// RegistryService answers whether a person already exists anywhere in the
// member store and builds the deduplicated single registry across all
// household applications.
type RegistryService struct {
	repo HouseholdRepository
}

func NewRegistryService(repo HouseholdRepository) *RegistryService {
	return &RegistryService{repo: repo}
}

// NormalizeNationalID canonicalizes a national ID for comparison: trimmed
// of surrounding whitespace and upper-cased.
func NormalizeNationalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// FindByNationalID checks whether a member with the given national ID exists
// in any household application. Comparison is exact-match on the normalized
// form. Queries shorter than three characters after trimming are rejected
// before any store lookup. When more than one stored member carries the same
// ID, the earliest-created row wins.
func (s *RegistryService) FindByNationalID(ctx context.Context, nationalID string) (*model.DuplicateLookupResult, error) {
	normalized := NormalizeNationalID(nationalID)
	if len(normalized) < minNationalIDQueryLength {
		return nil, ErrNationalIDTooShort
	}

	member, err := s.repo.FindMemberByNormalizedNationalID(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return &model.DuplicateLookupResult{Found: false}, nil
	}

	household, err := s.repo.GetHousehold(ctx, member.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load household for matched member %s: %w", member.ID, err)
	}
	allMembers, err := s.repo.ListMembersByHouseholdID(ctx, member.HouseholdID)
	if err != nil {
		return nil, err
	}

	return &model.DuplicateLookupResult{
		Found:      true,
		Member:     member,
		Household:  household,
		AllMembers: allMembers,
	}, nil
}

// BuildRegistry returns the deduplicated list of persons across all
// household applications, each with every (household, role) pair they are
// linked to, in the order applications were encountered.
//
// Persons are keyed by normalized national ID when present, otherwise by
// the lower-cased name plus date of birth. Two distinct people who share
// first name, last name and birth date and lack national IDs are
// indistinguishable to this grouping; that is a known limitation of the
// fallback key, not something this service tries to repair.
func (s *RegistryService) BuildRegistry(ctx context.Context) ([]model.RegistryPerson, error) {
	households, err := s.repo.ListHouseholdsWithMembers(ctx)
	if err != nil {
		return nil, err
	}

	persons := make([]*model.RegistryPerson, 0)
	byKey := make(map[string]*model.RegistryPerson)

	for _, household := range households {
		for _, member := range household.Members {
			key := registryKey(member)
			person, exists := byKey[key]
			if !exists {
				person = &model.RegistryPerson{
					FirstName:   member.FirstName,
					LastName:    member.LastName,
					DateOfBirth: member.DateOfBirth,
				}
				if member.NationalID != nil {
					normalized := NormalizeNationalID(*member.NationalID)
					person.NationalID = &normalized
				}
				byKey[key] = person
				persons = append(persons, person)
			}
			person.Applications = append(person.Applications, model.RegistryApplication{
				HouseholdID:     household.ID.String(),
				ApplicationCode: household.ApplicationCode,
				Role:            member.Role,
			})
		}
	}

	out := make([]model.RegistryPerson, len(persons))
	for i, p := range persons {
		out[i] = *p
	}
	return out, nil
}

// registryKey is the grouping key for one member: the normalized national ID
// when present, otherwise the name+DOB fallback composite.
func registryKey(member model.Member) string {
	if member.NationalID != nil {
		if normalized := NormalizeNationalID(*member.NationalID); normalized != "" {
			return "nid:" + normalized
		}
	}
	return fmt.Sprintf("name:%s_%s_%s",
		strings.ToLower(member.FirstName),
		strings.ToLower(member.LastName),
		member.DateOfBirth.Format("2006-01-02"),
	)
}
