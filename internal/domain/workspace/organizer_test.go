package workspace

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/GriffinCanCode/docdesk/internal/backend"
	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/GriffinCanCode/docdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	fake *testutil.Backend
	refs *content.Store
	org  *Organizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewBackend(t)
	client, err := backend.New(fake.Config())
	require.NoError(t, err)

	refs := content.NewStore()
	return &fixture{
		fake: fake,
		refs: refs,
		org:  NewOrganizer(client, refs, logging.NewNop()),
	}
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("logged in loads folders and documents", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("Reports")
		f.fake.AddDocument("a.pdf", nil, content.Blob{})

		snap := f.org.Init(ctx)

		assert.True(t, snap.LoggedIn)
		assert.Equal(t, []types.Folder{folder}, snap.Folders)
		assert.Len(t, snap.Documents, 1)
	})

	t.Run("logged out loads nothing", func(t *testing.T) {
		f := newFixture(t)
		f.fake.SetLoggedIn(false)

		snap := f.org.Init(ctx)

		assert.False(t, snap.LoggedIn)
		assert.Zero(t, f.fake.Calls(testutil.RouteFoldersView))
		assert.Zero(t, f.fake.Calls(testutil.RouteDocumentsView))
	})

	t.Run("login check failure means logged out", func(t *testing.T) {
		f := newFixture(t)
		f.fake.Fail(testutil.RouteCheckLogin, testutil.Disconnect, "")

		snap := f.org.Init(ctx)

		assert.False(t, snap.LoggedIn)
		assert.Equal(t, 1, f.fake.Calls(testutil.RouteCheckLogin))
	})
}

func TestFetchFailuresLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fake.AddFolder("Reports")
	f.fake.AddDocument("a.pdf", nil, content.Blob{})
	before := f.org.Init(ctx)

	f.fake.Fail(testutil.RouteFoldersView, http.StatusInternalServerError, "boom")
	f.fake.Fail(testutil.RouteDocumentsView, testutil.Disconnect, "")

	assert.Error(t, f.org.FetchFolders(ctx))
	assert.Error(t, f.org.FetchDocuments(ctx))

	after := f.org.Snapshot()
	assert.Equal(t, before.Folders, after.Folders)
	assert.Equal(t, before.Documents, after.Documents)
}

func TestFetchDocumentsForFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	folder := f.fake.AddFolder("Reports")
	f.fake.AddDocument("a.pdf", &folder.ID, content.Blob{})

	assert.Len(t, f.org.FetchDocumentsForFolder(ctx, folder.ID), 1)

	f.fake.Fail(testutil.RouteFolderDocuments, http.StatusBadGateway, "down")
	docs := f.org.FetchDocumentsForFolder(ctx, folder.ID)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestToggleFolderExpansion(t *testing.T) {
	ctx := context.Background()

	t.Run("expanding fetches every time", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("Reports")
		f.fake.AddDocument("a.pdf", &folder.ID, content.Blob{})
		f.org.Init(ctx)

		first := f.org.ToggleFolderExpansion(ctx, folder.ID)
		f.org.ToggleFolderExpansion(ctx, folder.ID)
		collapsed := f.org.Snapshot()
		second := f.org.ToggleFolderExpansion(ctx, folder.ID)

		assert.False(t, collapsed.IsExpanded(folder.ID))
		assert.Equal(t, 2, f.fake.Calls(testutil.RouteFolderDocuments))
		assert.Equal(t, first.ContentsOf(folder.ID), second.ContentsOf(folder.ID))
		assert.Equal(t, Render(first).Folders, Render(second).Folders)
	})

	t.Run("collapsing makes no call", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("Reports")
		f.org.Init(ctx)

		f.org.ToggleFolderExpansion(ctx, folder.ID)
		f.org.ToggleFolderExpansion(ctx, folder.ID)

		assert.Equal(t, 1, f.fake.Calls(testutil.RouteFolderDocuments))
	})

	t.Run("failed fetch falls back to the flat set", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("Reports")
		f.fake.AddDocument("a.pdf", &folder.ID, content.Blob{})
		f.org.Init(ctx)
		f.fake.Fail(testutil.RouteFolderDocuments, http.StatusInternalServerError, "boom")

		snap := f.org.ToggleFolderExpansion(ctx, folder.ID)

		assert.True(t, snap.IsExpanded(folder.ID))
		assert.NotContains(t, snap.FolderDocuments, folder.ID)
		assert.Len(t, snap.ContentsOf(folder.ID), 1)
	})
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("opening the modal requires login", func(t *testing.T) {
		f := newFixture(t)
		f.fake.SetLoggedIn(false)
		f.org.Init(ctx)

		assert.Equal(t, types.RouteRegister, f.org.OpenCreateFolder())
		assert.False(t, f.org.Snapshot().ModalOpen)
	})

	t.Run("empty name makes no call and keeps the modal open", func(t *testing.T) {
		f := newFixture(t)
		f.org.Init(ctx)
		require.Equal(t, types.RouteNone, f.org.OpenCreateFolder())

		_, err := f.org.CreateFolder(ctx)

		assert.True(t, types.IsValidation(err))
		snap := f.org.Snapshot()
		assert.Equal(t, StatusFolderNameEmpty, snap.Status)
		assert.True(t, snap.ModalOpen)
		assert.Zero(t, f.fake.Calls(testutil.RouteCreateFolder))
	})

	t.Run("success appends and closes", func(t *testing.T) {
		f := newFixture(t)
		f.fake.AddFolder("Existing")
		f.org.Init(ctx)
		f.org.OpenCreateFolder()
		f.org.SetFolderName("Invoices")

		folder, err := f.org.CreateFolder(ctx)
		require.NoError(t, err)

		snap := f.org.Snapshot()
		require.Len(t, snap.Folders, 2)
		assert.Equal(t, folder, snap.Folders[1])
		assert.Empty(t, snap.FolderName)
		assert.False(t, snap.ModalOpen)
		assert.Equal(t, StatusFolderCreated, snap.Status)
	})

	t.Run("failure never adds a folder and keeps the modal open", func(t *testing.T) {
		f := newFixture(t)
		f.org.Init(ctx)
		f.org.OpenCreateFolder()
		f.fake.Fail(testutil.RouteCreateFolder, http.StatusInternalServerError, "db down")

		_, err := f.org.CreateFolderNamed(ctx, "Invoices")
		require.Error(t, err)

		snap := f.org.Snapshot()
		assert.Empty(t, snap.Folders)
		assert.True(t, snap.ModalOpen)
		assert.Equal(t, "Invoices", snap.FolderName)
		assert.Equal(t, StatusFolderFailed, snap.Status)
	})

	t.Run("close modal", func(t *testing.T) {
		f := newFixture(t)
		f.org.Init(ctx)
		f.org.OpenCreateFolder()
		assert.False(t, f.org.CloseCreateFolder().ModalOpen)
	})
}

func TestOpenDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	doc := f.fake.AddDocument("r.pdf", nil, content.Blob{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"})

	nav, err := f.org.OpenDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RouteDocumentChat, nav.Route)
	require.NotNil(t, nav.DocumentID)
	assert.Equal(t, doc.ID, *nav.DocumentID)

	blob, err := f.refs.Fetch(nav.ContentReference)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)

	t.Run("failure produces no navigation", func(t *testing.T) {
		nav, err := f.org.OpenDocument(ctx, 999)
		assert.Error(t, err)
		assert.Empty(t, nav.ContentReference)
		assert.Equal(t, 1, f.refs.Len())
	})

	t.Run("invalid id makes no call", func(t *testing.T) {
		before := f.fake.Calls(testutil.RouteFetchDocument)
		_, err := f.org.OpenDocument(ctx, 0)
		assert.True(t, types.IsValidation(err))
		assert.Equal(t, before, f.fake.Calls(testutil.RouteFetchDocument))
	})
}

func TestDrop(t *testing.T) {
	ctx := context.Background()

	t.Run("no drag source is a no-op", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("A")
		f.org.Init(ctx)

		_, err := f.org.Drop(ctx, folder.ID)
		require.NoError(t, err)
		assert.Zero(t, f.fake.Calls(testutil.RouteMoveDocument))
	})

	t.Run("logged out clears the drag without a call", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("A")
		d := f.fake.AddDocument("d.pdf", nil, content.Blob{})
		f.fake.SetLoggedIn(false)
		f.org.Init(ctx)

		f.org.DragStart(d)
		snap, err := f.org.Drop(ctx, folder.ID)
		assert.ErrorIs(t, err, types.ErrNotLoggedIn)
		assert.Nil(t, snap.Dragged)
		assert.Zero(t, f.fake.Calls(testutil.RouteMoveDocument))
	})

	t.Run("success updates exactly the dragged document", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("A")
		other := f.fake.AddFolder("B")
		d := f.fake.AddDocument("d.pdf", nil, content.Blob{})
		e := f.fake.AddDocument("e.pdf", nil, content.Blob{})
		g := f.fake.AddDocument("g.pdf", &other.ID, content.Blob{})
		before := f.org.Init(ctx)

		f.org.DragStart(d)
		snap, err := f.org.Drop(ctx, folder.ID)
		require.NoError(t, err)

		for _, doc := range snap.Documents {
			switch doc.ID {
			case d.ID:
				assert.True(t, doc.InFolder(folder.ID))
			case e.ID, g.ID:
				prev, _ := before.Document(doc.ID)
				assert.Equal(t, prev, doc)
			}
		}
		assert.Nil(t, snap.Dragged)
		assert.Equal(t, StatusDocumentMoved, snap.Status)
	})

	t.Run("failure leaves assignment and clears drag", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("A")
		d := f.fake.AddDocument("d.pdf", nil, content.Blob{})
		f.org.Init(ctx)
		f.fake.Fail(testutil.RouteMoveDocument, http.StatusForbidden, "Not allowed")

		f.org.DragStart(d)
		snap, err := f.org.Drop(ctx, folder.ID)
		require.Error(t, err)

		moved, _ := snap.Document(d.ID)
		assert.Nil(t, moved.FolderID)
		assert.Nil(t, snap.Dragged)
		assert.Equal(t, "Error moving document: Not allowed", snap.Status)
	})

	t.Run("backend without message reports status text", func(t *testing.T) {
		f := newFixture(t)
		folder := f.fake.AddFolder("A")
		d := f.fake.AddDocument("d.pdf", nil, content.Blob{})
		f.org.Init(ctx)
		f.fake.Fail(testutil.RouteMoveDocument, http.StatusInternalServerError, "")

		f.org.DragStart(d)
		snap, _ := f.org.Drop(ctx, folder.ID)

		assert.Equal(t, "Error moving document: Internal Server Error", snap.Status)
	})
}

func TestMovedDocumentAppearsOnceUnderItsFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	folder := f.fake.AddFolder("A")
	d := f.fake.AddDocument("d.pdf", nil, content.Blob{})
	f.org.Init(ctx)

	// Expand first so the folder has a cached (now stale) listing.
	f.org.ToggleFolderExpansion(ctx, folder.ID)
	f.org.DragStart(d)
	_, err := f.org.Drop(ctx, folder.ID)
	require.NoError(t, err)

	assertOnceUnder := func(v View) {
		t.Helper()
		for _, u := range v.Unassigned {
			assert.NotEqual(t, d.ID, u.ID)
		}
		count := 0
		for _, fv := range v.Folders {
			for _, doc := range fv.Contents {
				if doc.ID == d.ID {
					assert.Equal(t, folder.ID, fv.ID)
					count++
				}
			}
		}
		assert.Equal(t, 1, count)
	}

	assertOnceUnder(f.org.View())

	f.org.ToggleFolderExpansion(ctx, folder.ID)
	f.org.ToggleFolderExpansion(ctx, folder.ID)
	assertOnceUnder(f.org.View())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.fake.AddFolder("A")
		f.org.Init(ctx)

		route, err := f.org.Logout(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.RouteHome, route)

		snap := f.org.Snapshot()
		assert.False(t, snap.LoggedIn)
		assert.Empty(t, snap.Folders)
		assert.Equal(t, types.RouteRegister, f.org.NavigateHome())
	})

	t.Run("failure leaves state", func(t *testing.T) {
		f := newFixture(t)
		f.org.Init(ctx)
		f.fake.Fail(testutil.RouteLogout, http.StatusInternalServerError, "")

		route, err := f.org.Logout(ctx)
		require.Error(t, err)
		assert.Equal(t, types.RouteNone, route)
		assert.True(t, f.org.Snapshot().LoggedIn)
		assert.Equal(t, types.RouteHome, f.org.NavigateHome())
	})
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("no file selected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.org.UploadDocument(ctx, "", "application/pdf", nil)
		assert.True(t, types.IsValidation(err))
		assert.Equal(t, "No file selected", f.org.Snapshot().Status)
		assert.Zero(t, f.fake.Calls(testutil.RouteUploadDocument))
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.org.UploadDocument(ctx, "a.png", "image/png", strings.NewReader("x"))
		assert.True(t, types.IsValidation(err))
		assert.Equal(t, "Unsupported file type. Please upload PDF, PPT, or CSV files.", f.org.Snapshot().Status)
		assert.Zero(t, f.fake.Calls(testutil.RouteUploadDocument))
	})

	t.Run("success refreshes and opens extracted text", func(t *testing.T) {
		f := newFixture(t)
		f.org.Init(ctx)

		nav, err := f.org.UploadDocument(ctx, "data.csv", "text/csv", strings.NewReader("a,b,c"))
		require.NoError(t, err)

		assert.Equal(t, types.RouteDocumentChat, nav.Route)
		assert.Nil(t, nav.DocumentID)
		blob, err := f.refs.Fetch(nav.ContentReference)
		require.NoError(t, err)
		assert.Equal(t, "a,b,c", string(blob.Data))

		snap := f.org.Snapshot()
		assert.Equal(t, "File uploaded successfully", snap.Status)
		assert.Len(t, snap.Documents, 1)
	})

	t.Run("undeclared type is sniffed", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.org.UploadDocument(ctx, "r.pdf", "", strings.NewReader("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"))
		require.NoError(t, err)

		uploads := f.fake.Uploads()
		require.Len(t, uploads, 1)
		assert.Equal(t, "application/pdf", uploads[0].ContentType)
		assert.True(t, strings.HasPrefix(string(uploads[0].Data), "%PDF-1.7"))
	})

	t.Run("backend failure", func(t *testing.T) {
		f := newFixture(t)
		f.fake.Fail(testutil.RouteUploadDocument, http.StatusInternalServerError, "")

		_, err := f.org.UploadDocument(ctx, "data.csv", "text/csv", strings.NewReader("a"))
		require.Error(t, err)
		assert.Equal(t, StatusUploadFailed, f.org.Snapshot().Status)
	})
}
