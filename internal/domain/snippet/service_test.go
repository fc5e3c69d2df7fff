package snippet_test

import (
	"context"
	"testing"

	"github.com/rpggio/officina/internal/domain/snippet"
	"github.com/rpggio/officina/internal/memstore"
	"github.com/rpggio/officina/internal/repository"
	"github.com/rpggio/officina/internal/repository/mocks"
	"github.com/stretchr/testify/require"
)

func TestSnippetService_SaveCreatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	svc := snippet.NewService(memstore.New(), nil)

	created, err := svc.Save(ctx, "", snippet.Input{Name: "hello", Code: "console.log('ciao')"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, snippet.JavaScript, created.Language)

	updated, err := svc.Save(ctx, created.ID, snippet.Input{Name: "hello", Code: "print('ciao')", Language: "Python"})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, snippet.Python, updated.Language)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, *updated, *stored)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSnippetService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := snippet.NewService(memstore.New(), nil)

	_, err := svc.Save(ctx, "", snippet.Input{Name: ""})
	require.ErrorIs(t, err, snippet.ErrInvalidInput)

	_, err = svc.Save(ctx, "", snippet.Input{Name: "x", Language: "cobol"})
	require.ErrorIs(t, err, snippet.ErrInvalidInput)

	_, err = svc.Save(ctx, "missing", snippet.Input{Name: "x"})
	require.ErrorIs(t, err, snippet.ErrSnippetNotFound)
}

func TestSnippetService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := snippet.NewService(store, nil)

	a, err := svc.Save(ctx, "", snippet.Input{Name: "a", Language: snippet.HTML})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "", snippet.Input{Name: "b", Language: snippet.CSS})
	require.NoError(t, err)
	_, err = store.Create(ctx, repository.CollectionSnippets, repository.Fields{"name": "legacy"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), snippet.ErrSnippetNotFound)

	snippets, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	require.Equal(t, "b", snippets[0].Name)
	require.Equal(t, snippet.JavaScript, snippets[1].Language)
}

func TestSnippetService_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &mocks.DocumentStore{}
	store.On("List", ctx, repository.CollectionSnippets).Return(nil, repository.ErrUnavailable)

	svc := snippet.NewService(store, nil)
	_, err := svc.Count(ctx)
	require.ErrorIs(t, err, repository.ErrUnavailable)
}
