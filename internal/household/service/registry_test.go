package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OpenSAMS/sams/internal/household/model"
)

func strPtr(s string) *string { return &s }

func TestNormalizeNationalID(t *testing.T) {
	assert.Equal(t, "AB123", NormalizeNationalID(" ab123 "))
	assert.Equal(t, "AB123", NormalizeNationalID("AB123"))
	assert.Equal(t, "", NormalizeNationalID("   "))
}

func TestFindByNationalIDRejectsShortQueries(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewRegistryService(mockRepo)

	_, err := svc.FindByNationalID(context.Background(), " ab ")
	assert.ErrorIs(t, err, ErrNationalIDTooShort)
	// The store must not be consulted for a rejected query.
	mockRepo.AssertNotCalled(t, "FindMemberByNormalizedNationalID", mock.Anything, mock.Anything)
}

func TestFindByNationalIDNormalizesBeforeLookup(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewRegistryService(mockRepo)
	ctx := context.Background()

	householdID := uuid.New()
	member := &model.Member{
		HouseholdID: householdID,
		FirstName:   "Amina",
		LastName:    "Phiri",
		NationalID:  strPtr(" AB123 "),
	}
	member.ID = uuid.New()
	household := &model.Household{ApplicationCode: "APP-2026-00007"}
	household.ID = householdID
	allMembers := []model.Member{*member}

	mockRepo.On("FindMemberByNormalizedNationalID", ctx, "AB123").Return(member, nil)
	mockRepo.On("GetHousehold", ctx, householdID).Return(household, nil)
	mockRepo.On("ListMembersByHouseholdID", ctx, householdID).Return(allMembers, nil)

	result, err := svc.FindByNationalID(ctx, "ab123")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, member.ID, result.Member.ID)
	assert.Equal(t, householdID, result.Household.ID)
	assert.Len(t, result.AllMembers, 1)
	mockRepo.AssertExpectations(t)
}

func TestFindByNationalIDNoMatch(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewRegistryService(mockRepo)
	ctx := context.Background()

	mockRepo.On("FindMemberByNormalizedNationalID", ctx, "ZZ999").Return(nil, nil)

	result, err := svc.FindByNationalID(ctx, "zz999")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Nil(t, result.Member)
	mockRepo.AssertNotCalled(t, "GetHousehold", mock.Anything, mock.Anything)
}

func TestBuildRegistryGroupsByNationalID(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewRegistryService(mockRepo)
	ctx := context.Background()

	dob := time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC)

	// Three applications: the same person appears in the first two under
	// differently-formatted national IDs, the third member has none.
	h1 := model.Household{ApplicationCode: "APP-2025-00001"}
	h1.ID = uuid.New()
	h1.Members = []model.Member{{
		HouseholdID: h1.ID, FirstName: "Amina", LastName: "Phiri",
		NationalID: strPtr("ab123"), DateOfBirth: dob, Role: model.MemberRoleHead,
	}}

	h2 := model.Household{ApplicationCode: "APP-2026-00002"}
	h2.ID = uuid.New()
	h2.Members = []model.Member{{
		HouseholdID: h2.ID, FirstName: "Amina", LastName: "Phiri",
		NationalID: strPtr(" AB123 "), DateOfBirth: dob, Role: model.MemberRoleSpouse,
	}}

	h3 := model.Household{ApplicationCode: "APP-2026-00003"}
	h3.ID = uuid.New()
	h3.Members = []model.Member{{
		HouseholdID: h3.ID, FirstName: "Joseph", LastName: "Banda",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Role: model.MemberRoleHead,
	}}

	mockRepo.On("ListHouseholdsWithMembers", ctx).Return([]model.Household{h1, h2, h3}, nil)

	persons, err := svc.BuildRegistry(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 2)

	amina := persons[0]
	require.NotNil(t, amina.NationalID)
	assert.Equal(t, "AB123", *amina.NationalID)
	require.Len(t, amina.Applications, 2)
	// Applications are kept in encounter order.
	assert.Equal(t, "APP-2025-00001", amina.Applications[0].ApplicationCode)
	assert.Equal(t, model.MemberRoleHead, amina.Applications[0].Role)
	assert.Equal(t, "APP-2026-00002", amina.Applications[1].ApplicationCode)
	assert.Equal(t, model.MemberRoleSpouse, amina.Applications[1].Role)

	joseph := persons[1]
	assert.Nil(t, joseph.NationalID)
	assert.Len(t, joseph.Applications, 1)
}

func TestBuildRegistryFallbackNameDOBKey(t *testing.T) {
	mockRepo := new(MockHouseholdRepository)
	svc := NewRegistryService(mockRepo)
	ctx := context.Background()

	dob := time.Date(1975, 9, 30, 0, 0, 0, 0, time.UTC)

	h1 := model.Household{ApplicationCode: "APP-2026-00010"}
	h1.ID = uuid.New()
	h1.Members = []model.Member{{
		HouseholdID: h1.ID, FirstName: "Mary", LastName: "Sakala",
		DateOfBirth: dob, Role: model.MemberRoleHead,
	}}

	h2 := model.Household{ApplicationCode: "APP-2026-00011"}
	h2.ID = uuid.New()
	h2.Members = []model.Member{
		{
			// Same name and birth date, no national ID: collapses into the
			// same registry person (documented limitation of the fallback key).
			HouseholdID: h2.ID, FirstName: "MARY", LastName: "sakala",
			DateOfBirth: dob, Role: model.MemberRoleDependent,
		},
		{
			HouseholdID: h2.ID, FirstName: "Mary", LastName: "Sakala",
			DateOfBirth: dob.AddDate(1, 0, 0), Role: model.MemberRoleOther,
		},
	}

	mockRepo.On("ListHouseholdsWithMembers", ctx).Return([]model.Household{h1, h2}, nil)

	persons, err := svc.BuildRegistry(ctx)
	require.NoError(t, err)
	// Same name+DOB merges; differing DOB stays separate.
	require.Len(t, persons, 2)
	assert.Len(t, persons[0].Applications, 2)
	assert.Len(t, persons[1].Applications, 1)
}
