package workspace

import (
	"context"
	"errors"
	"io"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/sequencer"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/GriffinCanCode/docdesk/internal/shared/utils"
	"go.uber.org/zap"
)

// Backend is the part of the document backend the organizer drives
type Backend interface {
	CheckLogin(ctx context.Context) (bool, error)
	ListFolders(ctx context.Context) ([]types.Folder, error)
	ListDocuments(ctx context.Context) ([]types.Document, error)
	FolderDocuments(ctx context.Context, folderID int64) ([]types.Document, error)
	CreateFolder(ctx context.Context, name string) (types.Folder, error)
	MoveDocument(ctx context.Context, documentID, folderID int64) (types.Document, error)
	FetchDocument(ctx context.Context, documentID int64) (content.Blob, error)
	UploadDocument(ctx context.Context, fileName, contentType string, body io.Reader) (types.UploadResult, error)
	Logout(ctx context.Context) error
}

// Organizer owns the folder and document workspace: login-gated loading,
// folder expansion, folder creation, drag-and-drop moves and the hand-off
// into a document session.
type Organizer struct {
	backend Backend
	refs    *content.Store
	store   *Store
	seq     *sequencer.Sequencer
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewOrganizer creates an organizer in the logged-out state
func NewOrganizer(backend Backend, refs *content.Store, logger *logging.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Organizer{
		backend: backend,
		refs:    refs,
		store:   NewStore(),
		seq:     sequencer.New(),
		logger:  logger.Component("workspace"),
	}
	o.store.Observe(func(a Action, s Snapshot) {
		o.logger.Debug("workspace action applied",
			zap.String("action", ActionName(a)),
			zap.Bool("logged_in", s.LoggedIn),
			zap.Int("folders", len(s.Folders)),
			zap.Int("documents", len(s.Documents)))
	})
	return o
}

// WithMetrics adds metrics tracking to the organizer
func (o *Organizer) WithMetrics(metrics *monitoring.Metrics) *Organizer {
	o.metrics = metrics
	return o
}

// Snapshot returns the current workspace state
func (o *Organizer) Snapshot() Snapshot {
	return o.store.Snapshot()
}

// Init checks the login state and loads folders and documents when logged in
func (o *Organizer) Init(ctx context.Context) Snapshot {
	if o.CheckLoginStatus(ctx) {
		_ = o.FetchFolders(ctx)
		_ = o.FetchDocuments(ctx)
	}
	return o.store.Snapshot()
}

// CheckLoginStatus asks the backend whether the session is valid.
// Any failure counts as logged out.
func (o *Organizer) CheckLoginStatus(ctx context.Context) bool {
	tok := o.seq.Next(sequencer.LoginKey)

	loggedIn, err := o.backend.CheckLogin(ctx)
	if err != nil {
		o.logger.Warn("error checking login status", zap.Error(err))
		loggedIn = false
	}

	o.applyLatest(tok, LoginChecked{LoggedIn: loggedIn})
	return loggedIn
}

// FetchFolders replaces the folder set. On failure the state is unchanged.
func (o *Organizer) FetchFolders(ctx context.Context) error {
	tok := o.seq.Next(sequencer.FoldersKey)

	folders, err := o.backend.ListFolders(ctx)
	if err != nil {
		o.logger.Warn("error fetching folders", zap.Error(err))
		return err
	}

	o.applyLatest(tok, FoldersLoaded{Folders: folders})
	return nil
}

// FetchDocuments replaces the flat document set. On failure the state is unchanged.
func (o *Organizer) FetchDocuments(ctx context.Context) error {
	tok := o.seq.Next(sequencer.DocumentsKey)

	docs, err := o.backend.ListDocuments(ctx)
	if err != nil {
		o.logger.Warn("error fetching documents", zap.Error(err))
		return err
	}

	o.applyLatest(tok, DocumentsLoaded{Documents: docs})
	return nil
}

// FetchDocumentsForFolder returns one folder's documents, or an empty
// list on any failure. It does not touch the workspace state.
func (o *Organizer) FetchDocumentsForFolder(ctx context.Context, folderID int64) []types.Document {
	docs, err := o.backend.FolderDocuments(ctx, folderID)
	if err != nil {
		o.logger.Warn("error fetching documents for folder",
			zap.Int64("folder_id", folderID), zap.Error(err))
		return []types.Document{}
	}
	return docs
}

// ToggleFolderExpansion flips a folder's expand flag. Expanding always
// refetches the folder's contents, cached or not.
func (o *Organizer) ToggleFolderExpansion(ctx context.Context, folderID int64) Snapshot {
	snap := o.store.Dispatch(FolderToggled{FolderID: folderID})
	if !snap.IsExpanded(folderID) {
		return snap
	}

	tok := o.seq.Next(sequencer.FolderKey(folderID))
	o.metrics.IncFolderRefreshes()

	var action Action
	docs, err := o.backend.FolderDocuments(ctx, folderID)
	if err != nil {
		o.logger.Warn("error fetching documents for folder",
			zap.Int64("folder_id", folderID), zap.Error(err))
		// Fall back to the flat document set rather than show an empty folder.
		action = FolderContentsDropped{FolderID: folderID}
	} else {
		action = FolderContentsLoaded{FolderID: folderID, Documents: docs}
	}

	o.applyLatest(tok, action)
	return o.store.Snapshot()
}

// SetFolderName updates the create-folder input
func (o *Organizer) SetFolderName(name string) Snapshot {
	return o.store.Dispatch(FolderNameChanged{Name: name})
}

// OpenCreateFolder opens the create-folder modal, or routes a logged-out
// user to registration.
func (o *Organizer) OpenCreateFolder() types.Route {
	if !o.store.Snapshot().LoggedIn {
		return types.RouteRegister
	}
	o.store.Dispatch(ModalOpened{})
	return types.RouteNone
}

// CloseCreateFolder closes the create-folder modal
func (o *Organizer) CloseCreateFolder() Snapshot {
	return o.store.Dispatch(ModalClosed{})
}

// CreateFolder creates a folder named by the current input
func (o *Organizer) CreateFolder(ctx context.Context) (types.Folder, error) {
	return o.create(ctx, o.store.Snapshot().FolderName)
}

// CreateFolderNamed sets the input to name and creates the folder
func (o *Organizer) CreateFolderNamed(ctx context.Context, name string) (types.Folder, error) {
	o.store.Dispatch(FolderNameChanged{Name: name})
	return o.create(ctx, name)
}

func (o *Organizer) create(ctx context.Context, name string) (types.Folder, error) {
	if err := utils.ValidateFolderName(name); err != nil {
		var ve *types.ValidationError
		errors.As(err, &ve)
		o.store.Dispatch(StatusSet{Message: ve.Message})
		o.metrics.RecordFolderCreate(monitoring.OutcomeValidation)
		return types.Folder{}, err
	}

	folder, err := o.backend.CreateFolder(ctx, name)
	if err != nil {
		o.logger.Error("folder creation failed", zap.String("name", name), zap.Error(err))
		o.store.Dispatch(StatusSet{Message: StatusFolderFailed})
		o.metrics.RecordFolderCreate(outcomeOf(err))
		return types.Folder{}, err
	}

	o.store.Dispatch(FolderCreated{Folder: folder})
	o.metrics.RecordFolderCreate(monitoring.OutcomeSuccess)
	return folder, nil
}

// OpenDocument downloads a document, registers a transient content
// reference for it and returns the navigation into its session.
func (o *Organizer) OpenDocument(ctx context.Context, documentID int64) (types.Navigation, error) {
	if err := utils.ValidateID("document_id", documentID); err != nil {
		return types.Navigation{}, err
	}

	blob, err := o.backend.FetchDocument(ctx, documentID)
	if err != nil {
		o.logger.Warn("error fetching document content",
			zap.Int64("document_id", documentID), zap.Error(err))
		return types.Navigation{}, err
	}

	ref := o.refs.Register(blob)
	o.logger.Debug("document opened",
		zap.Int64("document_id", documentID),
		zap.String("content_type", blob.ContentType),
		zap.Int("size", blob.Size()))

	id := documentID
	return types.Navigation{
		Route:            types.RouteDocumentChat,
		ContentReference: ref,
		DocumentID:       &id,
	}, nil
}

// DragStart makes doc the current drag source
func (o *Organizer) DragStart(doc types.Document) Snapshot {
	return o.store.Dispatch(DragStarted{Document: doc})
}

// Drop moves the dragged document into folderID. Without a drag source it
// does nothing. Only a backend-confirmed move changes the document's
// folder; the drag slot is cleared either way. A logged-out workspace
// clears the drag and returns ErrNotLoggedIn without calling the backend.
func (o *Organizer) Drop(ctx context.Context, folderID int64) (Snapshot, error) {
	snap := o.store.Snapshot()
	if snap.Dragged == nil {
		return snap, nil
	}
	doc := *snap.Dragged
	if !snap.LoggedIn {
		return o.store.Dispatch(DragCleared{DocumentID: doc.ID}), types.ErrNotLoggedIn
	}
	tok := o.seq.Next(sequencer.MoveKey(doc.ID))

	moved, err := o.backend.MoveDocument(ctx, doc.ID, folderID)
	if err != nil {
		o.logger.Error("error moving document",
			zap.Int64("document_id", doc.ID),
			zap.Int64("folder_id", folderID),
			zap.Error(err))
		o.applyLatest(tok, StatusSet{Message: StatusMovePrefix + moveErrorMessage(err)})
		o.store.Dispatch(DragCleared{DocumentID: doc.ID})
		o.metrics.RecordMove(outcomeOf(err))
		return o.store.Snapshot(), err
	}

	_, applied := o.store.DispatchIf(func(s Snapshot) bool {
		if !o.seq.IsLatest(tok) {
			return false
		}
		// Listings issued before this confirmation no longer reflect it.
		o.seq.Invalidate(sequencer.DocumentsKey)
		o.seq.Invalidate(sequencer.FolderKey(folderID))
		if current, ok := s.Document(doc.ID); ok && current.FolderID != nil {
			o.seq.Invalidate(sequencer.FolderKey(*current.FolderID))
		}
		return true
	}, DocumentMoved{Document: moved})
	o.store.Dispatch(DragCleared{DocumentID: doc.ID})

	if !applied {
		o.metrics.RecordStale("move_document")
		o.metrics.RecordMove(monitoring.OutcomeStale)
	} else {
		o.metrics.RecordMove(monitoring.OutcomeSuccess)
	}
	return o.store.Snapshot(), nil
}

// Logout ends the backend session. On failure the state is unchanged.
func (o *Organizer) Logout(ctx context.Context) (types.Route, error) {
	if err := o.backend.Logout(ctx); err != nil {
		o.logger.Error("logout failed", zap.Error(err))
		return types.RouteNone, err
	}

	o.store.DispatchIf(func(Snapshot) bool {
		o.seq.InvalidateAll()
		return true
	}, LoggedOut{})
	return types.RouteHome, nil
}

// NavigateHome routes to home when logged in and to registration otherwise
func (o *Organizer) NavigateHome() types.Route {
	if o.store.Snapshot().LoggedIn {
		return types.RouteHome
	}
	return types.RouteRegister
}

// applyLatest dispatches a completion only if its token is still current
func (o *Organizer) applyLatest(tok sequencer.Token, a Action) bool {
	_, applied := o.store.DispatchIf(func(Snapshot) bool {
		return o.seq.IsLatest(tok)
	}, a)
	if !applied {
		o.logger.Debug("discarding stale completion",
			zap.String("token", tok.String()),
			zap.String("action", ActionName(a)))
		o.metrics.RecordStale(ActionName(a))
	}
	return applied
}

// moveErrorMessage picks the backend message when there is one and the
// transport error otherwise.
func moveErrorMessage(err error) string {
	var be *types.BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	var ne *types.NetworkError
	if errors.As(err, &ne) && ne.Err != nil {
		return ne.Err.Error()
	}
	return err.Error()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeSuccess
	case types.IsValidation(err):
		return monitoring.OutcomeValidation
	case types.IsBackend(err):
		return monitoring.OutcomeBackend
	default:
		return monitoring.OutcomeNetwork
	}
}
