// internal/store/memory_test.go
package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinerent/internal/model"
)

func movieFixture(total int) model.Movie {
	return model.Movie{
		ID:          uuid.New(),
		Title:       "Alien",
		Genre:       "SciFi",
		Rating:      8.5,
		TotalCopies: total,
		Available:   total,
		Status:      "active",
	}
}

func TestCommitAtomicAppliesRentAndAppendsLedger(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(2)
	st.PutMovie(movie)
	user := model.User{ID: uuid.New(), Status: "active"}
	st.PutUser(user)

	err := st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 0,
		CopiesDelta:     -1,
		UserID:          user.ID,
		Op:              OpAddRented,
	})
	require.NoError(t, err)

	got, err := st.FindMovie(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)
	assert.Equal(t, 1, got.Version)

	holder, err := st.FindUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, holder.HasRented(movie.ID))

	ledger := st.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, "rented", ledger[0].Action)
	assert.Equal(t, user.ID, ledger[0].UserID)
	assert.Equal(t, movie.ID, ledger[0].MovieID)
}

func TestCommitAtomicRejectsStaleVersion(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(2)
	movie.Version = 5
	st.PutMovie(movie)
	user := model.User{ID: uuid.New(), Status: "active"}
	st.PutUser(user)

	err := st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 4, // someone committed since this read
		CopiesDelta:     -1,
		UserID:          user.ID,
		Op:              OpAddRented,
	})
	require.ErrorIs(t, err, model.ErrConflict)

	got, err := st.FindMovie(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Available)
	assert.Empty(t, st.Ledger())
}

func TestCommitAtomicEnforcesCopyBounds(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(1)
	movie.Available = 0
	movie.Version = 1
	st.PutMovie(movie)
	user := model.User{ID: uuid.New(), Status: "active"}
	st.PutUser(user)

	err := st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 1,
		CopiesDelta:     -1,
		UserID:          user.ID,
		Op:              OpAddRented,
	})
	require.ErrorIs(t, err, model.ErrConflict)

	// Returning above TotalCopies is equally out of bounds.
	full := movieFixture(1)
	st.PutMovie(full)
	holder := model.User{ID: uuid.New(), Rented: []uuid.UUID{full.ID}, Status: "active"}
	st.PutUser(holder)

	err = st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         full.ID,
		ExpectedVersion: 0,
		CopiesDelta:     1,
		UserID:          holder.ID,
		Op:              OpRemoveRented,
	})
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestCommitAtomicRejectsDuplicateRentAndMissingReturn(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(3)
	st.PutMovie(movie)
	holder := model.User{ID: uuid.New(), Rented: []uuid.UUID{movie.ID}, Status: "active"}
	st.PutUser(holder)
	other := model.User{ID: uuid.New(), Status: "active"}
	st.PutUser(other)

	err := st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 0,
		CopiesDelta:     -1,
		UserID:          holder.ID,
		Op:              OpAddRented,
	})
	require.ErrorIs(t, err, model.ErrConflict)

	err = st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 0,
		CopiesDelta:     1,
		UserID:          other.ID,
		Op:              OpRemoveRented,
	})
	require.ErrorIs(t, err, model.ErrConflict)
}

func TestCommitAtomicUnknownRecords(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(1)
	st.PutMovie(movie)

	err := st.CommitAtomic(context.Background(), RentalMutation{
		MovieID:         movie.ID,
		ExpectedVersion: 0,
		CopiesDelta:     -1,
		UserID:          uuid.New(),
		Op:              OpAddRented,
	})
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.RecordUser, notFound.Kind)
}

func TestFindMoviesByIDsPreservesOrderAndSkipsUnknown(t *testing.T) {
	st := NewMemory()
	first := movieFixture(1)
	second := movieFixture(1)
	st.PutMovie(first)
	st.PutMovie(second)

	got, err := st.FindMoviesByIDs(context.Background(), []uuid.UUID{second.ID, uuid.New(), first.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestFindOtherUsersExcludesAndSorts(t *testing.T) {
	st := NewMemory()
	target := model.User{ID: uuid.New(), Status: "active"}
	st.PutUser(target)
	for i := 0; i < 5; i++ {
		st.PutUser(model.User{ID: uuid.New(), Status: "active"})
	}

	got, err := st.FindOtherUsers(context.Background(), target.ID)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, u := range got {
		assert.NotEqual(t, target.ID, u.ID)
	}
	for i := 1; i < len(got); i++ {
		assert.True(t, lessUUID(got[i-1].ID, got[i].ID), "users must come back id-ascending")
	}
}

func TestFindReturnsCopies(t *testing.T) {
	st := NewMemory()
	movie := movieFixture(2)
	st.PutMovie(movie)

	got, err := st.FindMovie(context.Background(), movie.ID)
	require.NoError(t, err)
	got.Available = 0

	again, err := st.FindMovie(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Available, "mutating a returned movie must not leak into the store")
}
