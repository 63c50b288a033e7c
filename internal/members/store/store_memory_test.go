package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"members/internal/members/codec"
	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

func draft(name string, section models.Section, roles ...models.Role) models.Draft {
	return models.Draft{Name: name, Section: section, Roles: models.NewRoleSet(roles...)}
}

func TestInMemoryStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)

	created, err := s.Create(ctx, draft("Ana", models.SectionAlto, models.RoleSinger))
	require.NoError(t, err)
	assert.Equal(t, models.MemberID(1), created.ID)

	found, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestInMemoryStore_UpdateIsFullReplace(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)
	email := "ana@example.com"

	d := draft("Ana", models.SectionAlto, models.RoleSinger, models.RoleCouncil)
	d.Email = &email
	created, err := s.Create(ctx, d)
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, draft("Ana K", models.SectionSoprano))
	require.NoError(t, err)
	assert.Equal(t, "Ana K", updated.Name)
	assert.Nil(t, updated.Email, "omitted optional fields are cleared")
	assert.Empty(t, updated.Roles, "roles are replaced, not merged")

	found, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, found)
}

func TestInMemoryStore_MissingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)

	_, err := s.FindByID(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = s.Update(ctx, 99, draft("X", models.SectionBass))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = s.Delete(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_DeleteKillsID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)

	first, err := s.Create(ctx, draft("Ana", models.SectionAlto, models.RoleSinger))
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, deleted, "delete returns the record as it was before removal")

	_, err = s.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	second, err := s.Create(ctx, draft("Bo", models.SectionBass))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "ids are never reused")
}

func TestInMemoryStore_FindByRole(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)

	population := []models.Draft{
		draft("Ana", models.SectionAlto, models.RoleSinger),
		draft("Bo", models.SectionBass, models.RoleSinger, models.RoleCouncil),
		draft("Cy", models.SectionTenor, models.RoleCouncil),
		draft("Di", models.SectionSoprano),
		draft("Ed", models.SectionTenor, models.RoleConductor, models.RoleSinger),
	}
	stored := make([]*models.Member, 0, len(population))
	for _, d := range population {
		m, err := s.Create(ctx, d)
		require.NoError(t, err)
		stored = append(stored, m)
	}

	for _, role := range models.Roles {
		t.Run(string(role), func(t *testing.T) {
			var want []models.MemberID
			for _, m := range stored {
				if m.Roles.Contains(role) {
					want = append(want, m.ID)
				}
			}

			got, err := s.FindByRole(ctx, role)
			require.NoError(t, err)
			ids := make([]models.MemberID, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.ElementsMatch(t, want, ids)
		})
	}
}

func TestInMemoryStore_IgnorePolicyDropsUnknownStoredRoles(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(codec.New(codec.IgnoreUnknown))
	s.rows[7] = memberRow{ID: 7, Name: "Legacy", Section: "Alto", Roles: "Singer,Drummer"}

	m, err := s.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSet{models.RoleSinger}, m.Roles)

	strict := NewInMemory(nil)
	strict.rows[7] = memberRow{ID: 7, Name: "Legacy", Section: "Alto", Roles: "Singer,Drummer"}
	_, err = strict.FindByID(ctx, 7)
	var fe *codec.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestInMemoryStore_ConcurrentDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory(nil)
	const workers = 32

	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			m, err := s.Create(ctx, draft(fmt.Sprintf("member-%d", i), models.SectionAlto))
			if err != nil {
				return err
			}
			name := fmt.Sprintf("renamed-%d", i)
			if _, err := s.Update(ctx, m.ID, draft(name, models.SectionBass, models.RoleSinger)); err != nil {
				return err
			}
			got, err := s.FindByID(ctx, m.ID)
			if err != nil {
				return err
			}
			if got.Name != name {
				return fmt.Errorf("member %d: expected %q, got %q", m.ID, name, got.Name)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, workers)
}
