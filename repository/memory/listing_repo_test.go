package memory

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/repository"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestRepo(t *testing.T) (repository.ListingRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	repo := NewListingRepository(ListingOptions{
		Clock: clock.Now,
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	return repo, clock
}

func saleDraft(title string) domain.ListingDraft {
	return domain.ListingDraft{
		Title:        title,
		Address:      "Москва, ул. Тверская, 1",
		Price:        decimal.NewFromInt(15_000_000),
		DealType:     domain.DealSale,
		PropertyType: domain.PropertyTwoPlusOne,
	}
}

func rentDraft(title string) domain.ListingDraft {
	d := saleDraft(title)
	d.DealType = domain.DealRent
	d.Price = decimal.NewFromInt(80_000)
	d.PropertyType = domain.PropertyStudio
	return d
}

func TestCreate_AssignsIdentityAndDefaults(t *testing.T) {
	repo, clock := newTestRepo(t)

	created, err := repo.Create(saleDraft("Квартира в центре"))
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, clock.now, created.CreatedAt)
	assert.Equal(t, domain.StatusAvailable, created.PropertyStatus)
	assert.Nil(t, created.Rental, "sale listings carry no rental record")
	require.NotNil(t, created.Coordinates)
	assert.True(t, DefaultFallbackBox.Contains(*created.Coordinates))
}

func TestCreate_IdentitiesAreUniqueAndIncreasing(t *testing.T) {
	repo, _ := newTestRepo(t)

	var last int64
	for i := 0; i < 50; i++ {
		l, err := repo.Create(saleDraft("x"))
		require.NoError(t, err)
		assert.Greater(t, l.ID, last)
		last = l.ID
	}
	assert.Equal(t, 50, repo.Count())
}

func TestCreate_RentInitializesRental(t *testing.T) {
	repo, _ := newTestRepo(t)

	created, err := repo.Create(rentDraft("Студия на Арбате"))
	require.NoError(t, err)

	require.NotNil(t, created.Rental)
	assert.Nil(t, created.Rental.CurrentTenant)
	assert.Empty(t, created.Rental.RentPeriods)
	assert.Empty(t, created.Rental.Calendar.Booked)
}

func TestCreate_ValidationListsMissingFields(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Create(domain.ListingDraft{Description: "no required data"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title", "propertyType", "dealType", "price", "address"}, verr.Fields)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Zero(t, repo.Count())
}

func TestCreate_RejectsInvalidOptionalFields(t *testing.T) {
	repo, _ := newTestRepo(t)

	negativeRooms := -1
	zeroArea := decimal.Zero
	tests := []struct {
		name   string
		mutate func(d *domain.ListingDraft)
	}{
		{"negative price", func(d *domain.ListingDraft) { d.Price = decimal.NewFromInt(-5) }},
		{"negative rooms", func(d *domain.ListingDraft) { d.Rooms = &negativeRooms }},
		{"zero area", func(d *domain.ListingDraft) { d.Area = &zeroArea }},
		{"unknown tag", func(d *domain.ListingDraft) { d.Tags = []domain.Feature{"SAUNA"} }},
		{"too many photos", func(d *domain.ListingDraft) { d.Photos = make([]string, 11) }},
		{"bad coordinates", func(d *domain.ListingDraft) { d.Coordinates = &domain.Coordinates{Lat: 91} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := saleDraft("x")
			tt.mutate(&d)
			_, err := repo.Create(d)
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Zero(t, repo.Count())
}

func TestCreate_ConsumesPendingCoordinates(t *testing.T) {
	repo, _ := newTestRepo(t)
	pending := domain.Coordinates{Lat: 55.7522, Lng: 37.5927}
	require.NoError(t, repo.SetPendingCoordinates(&pending))

	first, err := repo.Create(saleDraft("geocoded"))
	require.NoError(t, err)
	assert.Equal(t, pending, *first.Coordinates)
	assert.Nil(t, repo.PendingCoordinates())

	second, err := repo.Create(saleDraft("random"))
	require.NoError(t, err)
	assert.True(t, DefaultFallbackBox.Contains(*second.Coordinates))
}

func TestCreate_PendingCoordinatesWinOverDraft(t *testing.T) {
	repo, _ := newTestRepo(t)
	pending := domain.Coordinates{Lat: 10, Lng: 20}
	require.NoError(t, repo.SetPendingCoordinates(&pending))

	draft := saleDraft("both set")
	draft.Coordinates = &domain.Coordinates{Lat: 1, Lng: 2}
	created, err := repo.Create(draft)
	require.NoError(t, err)
	assert.Equal(t, pending, *created.Coordinates)
	assert.Nil(t, repo.PendingCoordinates())

	explicit := saleDraft("explicit only")
	explicit.Coordinates = &domain.Coordinates{Lat: 1, Lng: 2}
	second, err := repo.Create(explicit)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lng: 2}, *second.Coordinates)
}

func TestSetPendingCoordinates_RejectsOutOfRange(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.SetPendingCoordinates(&domain.Coordinates{Lat: 10, Lng: 200})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Nil(t, repo.PendingCoordinates())
}

func TestCreateThenFilter_ReturnsRecordOnce(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Create(saleDraft("other"))
	require.NoError(t, err)
	created, err := repo.Create(rentDraft("target"))
	require.NoError(t, err)

	got := repo.Filter(repository.ListingFilter{DealType: domain.DealRent})
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestFilter_PreservesOrderAndCriteria(t *testing.T) {
	repo, _ := newTestRepo(t)

	cheap := saleDraft("cheap")
	cheap.Price = decimal.NewFromInt(100)
	cheap.Tags = []domain.Feature{domain.FeatureParking, domain.FeatureBalcony}
	mid := saleDraft("mid")
	mid.Price = decimal.NewFromInt(500)
	mid.Tags = []domain.Feature{domain.FeatureParking}
	sold := saleDraft("sold")
	sold.Price = decimal.NewFromInt(300)
	sold.PropertyStatus = domain.StatusSold

	for _, d := range []domain.ListingDraft{cheap, mid, sold} {
		_, err := repo.Create(d)
		require.NoError(t, err)
	}

	lo := decimal.NewFromInt(200)
	hi := decimal.NewFromInt(600)
	byPrice := repo.Filter(repository.ListingFilter{MinPrice: &lo, MaxPrice: &hi})
	require.Len(t, byPrice, 2)
	assert.Equal(t, "mid", byPrice[0].Title)
	assert.Equal(t, "sold", byPrice[1].Title)

	byTags := repo.Filter(repository.ListingFilter{Tags: []domain.Feature{domain.FeatureParking}})
	require.Len(t, byTags, 2)
	assert.Equal(t, "cheap", byTags[0].Title)
	assert.Equal(t, "mid", byTags[1].Title)

	byStatus := repo.Filter(repository.ListingFilter{PropertyStatus: domain.StatusSold})
	require.Len(t, byStatus, 1)
	assert.Equal(t, "sold", byStatus[0].Title)

	all := repo.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"cheap", "mid", "sold"}, []string{all[0].Title, all[1].Title, all[2].Title})
}

func TestReadsReturnCopies(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(saleDraft("original"))
	require.NoError(t, err)

	created.Title = "mutated"
	list := repo.List()
	list[0].Photos = append(list[0].Photos, "leak")

	got, ok := repo.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Title)
	assert.Empty(t, got.Photos)
}

func TestUpdate_ShallowMergeAndVisibleImmediately(t *testing.T) {
	repo, clock := newTestRepo(t)
	d := rentDraft("rent")
	d.Photos = []string{"data:image/jpeg;base64,old"}
	created, err := repo.Create(d)
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Hour)
	title := "renamed"
	photos := []string{"data:image/jpeg;base64,new"}
	updated, err := repo.Update(created.ID, domain.ListingPatch{Title: &title, Photos: &photos})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, photos, updated.Photos)
	assert.Equal(t, created.Address, updated.Address)
	assert.NotNil(t, updated.Rental, "rental survives unrelated edits")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.now, updated.UpdatedAt)

	got, _ := repo.Get(created.ID)
	assert.Equal(t, "renamed", got.Title)
}

func TestUpdate_DealTypeSwitchKeepsRental(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(rentDraft("rent"))
	require.NoError(t, err)

	sale := domain.DealSale
	updated, err := repo.Update(created.ID, domain.ListingPatch{DealType: &sale})
	require.NoError(t, err)
	assert.NotNil(t, updated.Rental)

	other, err := repo.Create(saleDraft("sale"))
	require.NoError(t, err)
	rent := domain.DealRent
	switched, err := repo.Update(other.ID, domain.ListingPatch{DealType: &rent})
	require.NoError(t, err)
	assert.NotNil(t, switched.Rental)
}

func TestUpdate_UnknownIDIsSilentNoop(t *testing.T) {
	repo, _ := newTestRepo(t)
	title := "x"
	updated, err := repo.Update(999, domain.ListingPatch{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUpdate_RejectsInvalidPatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(saleDraft("x"))
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = repo.Update(created.ID, domain.ListingPatch{Price: &zero})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	got, _ := repo.Get(created.ID)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(15_000_000)))
}

func TestDelete_RemovesAndRepeatsAsNoop(t *testing.T) {
	repo, _ := newTestRepo(t)
	keep, err := repo.Create(saleDraft("keep"))
	require.NoError(t, err)
	gone, err := repo.Create(saleDraft("gone"))
	require.NoError(t, err)

	assert.True(t, repo.Delete(gone.ID))
	assert.False(t, repo.Delete(gone.ID))
	assert.False(t, repo.Delete(12345))

	_, ok := repo.Get(gone.ID)
	assert.False(t, ok)
	for _, l := range repo.List() {
		assert.NotEqual(t, gone.ID, l.ID)
	}
	assert.Len(t, repo.Filter(repository.ListingFilter{DealType: domain.DealSale}), 1)
	_, ok = repo.Get(keep.ID)
	assert.True(t, ok)
}

func TestRentalPeriods_Lifecycle(t *testing.T) {
	repo, clock := newTestRepo(t)
	created, err := repo.Create(rentDraft("rent"))
	require.NoError(t, err)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	period, err := repo.AddRentalPeriod(created.ID, domain.RentPeriodInput{
		Tenant:      domain.Contact{Name: "Анна Иванова", Phone: "+7 (999) 888-77-66"},
		Start:       start,
		End:         end,
		MonthlyRent: decimal.NewFromInt(80_000),
		Deposit:     decimal.NewFromInt(160_000),
	})
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, domain.RentPeriodActive, period.Status)

	got, _ := repo.Get(created.ID)
	require.Len(t, got.Rental.RentPeriods, 1)
	require.NotNil(t, got.Rental.CurrentTenant)
	assert.Equal(t, "Анна Иванова", got.Rental.CurrentTenant.Name)
	require.Len(t, got.Rental.Calendar.Booked, 1)
	assert.Equal(t, start, got.Rental.Calendar.Booked[0].Start)
	assert.Equal(t, "Анна Иванова", got.Rental.Calendar.Booked[0].Tenant)

	rent := decimal.NewFromInt(85_000)
	adjusted, err := repo.UpdateRentalPeriod(created.ID, period.ID, domain.RentPeriodPatch{MonthlyRent: &rent})
	require.NoError(t, err)
	assert.True(t, adjusted.MonthlyRent.Equal(rent))

	clock.now = clock.now.Add(48 * time.Hour)
	ended := repo.EndRentalPeriod(created.ID, period.ID)
	require.NotNil(t, ended)
	assert.Equal(t, domain.RentPeriodCompleted, ended.Status)
	assert.Equal(t, clock.now, ended.End)

	got, _ = repo.Get(created.ID)
	assert.Nil(t, got.Rental.CurrentTenant)
}

func TestRentalPeriods_NoopForSaleOrMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	sale, err := repo.Create(saleDraft("sale"))
	require.NoError(t, err)

	input := domain.RentPeriodInput{
		Tenant: domain.Contact{Name: "T"},
		Start:  time.Now(),
		End:    time.Now().Add(time.Hour),
	}
	p, err := repo.AddRentalPeriod(sale.ID, input)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = repo.AddRentalPeriod(404, input)
	assert.NoError(t, err)
	assert.Nil(t, p)

	assert.Nil(t, repo.EndRentalPeriod(sale.ID, 1))
	assert.Nil(t, repo.EndRentalPeriod(404, 1))
}

func TestShowings_AddUpdateRemove(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(saleDraft("x"))
	require.NoError(t, err)

	at := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	showing, err := repo.AddShowing(created.ID, domain.ShowingInput{
		ScheduledAt: at,
		Client:      domain.Contact{Name: "Client", Phone: "+7"},
		Comment:     "first visit",
	})
	require.NoError(t, err)
	require.NotNil(t, showing)

	comment := "moved"
	later := at.Add(24 * time.Hour)
	updated := repo.UpdateShowing(created.ID, showing.ID, domain.ShowingPatch{ScheduledAt: &later, Comment: &comment})
	require.NotNil(t, updated)
	assert.Equal(t, later, updated.ScheduledAt)
	assert.Equal(t, "moved", updated.Comment)

	assert.Nil(t, repo.UpdateShowing(created.ID, 1, domain.ShowingPatch{Comment: &comment}))
	assert.False(t, repo.RemoveShowing(created.ID, 1))
	assert.True(t, repo.RemoveShowing(created.ID, showing.ID))

	got, _ := repo.Get(created.ID)
	assert.Empty(t, got.Showings)

	_, err = repo.AddShowing(created.ID, domain.ShowingInput{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
