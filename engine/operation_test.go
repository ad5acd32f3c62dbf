// ABOUTME: Tests for the reversible operation variants against a fake remote
// ABOUTME: Covers add-before-remove ordering, batch failures, and undo symmetry

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"yanger/playlist"
)

// fakeRemote records calls in order and fails on request. Shared by the
// operation, stack, and dispatcher tests.
type fakeRemote struct {
	quota int
	calls []string

	failAddVideo  map[string]error // keyed by video id
	failRemove    map[string]error // keyed by playlist-item id
	failCreate    error
	failDelete    error
	failRename    error
	nextItemSeq   int
	createdSeq    int
	removedItems  []string
	addedVideos   []string
	renamedTitles []string
}

func newFakeRemote(quota int) *fakeRemote {
	return &fakeRemote{
		quota:        quota,
		failAddVideo: map[string]error{},
		failRemove:   map[string]error{},
	}
}

func (f *fakeRemote) AddVideo(_ context.Context, videoID, playlistID string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("add %s to %s", videoID, playlistID))

	if err := f.failAddVideo[videoID]; err != nil {
		return "", err
	}

	f.nextItemSeq++
	f.addedVideos = append(f.addedVideos, videoID)

	return fmt.Sprintf("item-%d", f.nextItemSeq), nil
}

func (f *fakeRemote) RemoveVideo(_ context.Context, playlistItemID string) error {
	f.calls = append(f.calls, fmt.Sprintf("remove %s", playlistItemID))

	if err := f.failRemove[playlistItemID]; err != nil {
		return err
	}

	f.removedItems = append(f.removedItems, playlistItemID)

	return nil
}

func (f *fakeRemote) RenamePlaylist(_ context.Context, playlistID, title string) error {
	f.calls = append(f.calls, fmt.Sprintf("rename-playlist %s to %s", playlistID, title))

	if f.failRename != nil {
		return f.failRename
	}

	f.renamedTitles = append(f.renamedTitles, title)

	return nil
}

func (f *fakeRemote) RenameVideo(_ context.Context, videoID, title string) error {
	f.calls = append(f.calls, fmt.Sprintf("rename-video %s to %s", videoID, title))

	if f.failRename != nil {
		return f.failRename
	}

	f.renamedTitles = append(f.renamedTitles, title)

	return nil
}

func (f *fakeRemote) CreatePlaylist(_ context.Context, title, _ string, _ playlist.Privacy) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("create-playlist %s", title))

	if f.failCreate != nil {
		return "", f.failCreate
	}

	f.createdSeq++

	return fmt.Sprintf("pl-new-%d", f.createdSeq), nil
}

func (f *fakeRemote) DeletePlaylist(_ context.Context, playlistID string) error {
	f.calls = append(f.calls, fmt.Sprintf("delete-playlist %s", playlistID))

	return f.failDelete
}

func (f *fakeRemote) QuotaRemaining() int { return f.quota }

func (f *fakeRemote) callCount() int { return len(f.calls) }

// ---- Paste ----

func TestPasteCopyExecute(t *testing.T) {
	remote := newFakeRemote(10000)
	videos := testVideos("a", "b")

	op := NewPasteOp(remote, videos, "pl-target", "pl-source", false)

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(op.AddedItemIDs()) != 2 {
		t.Errorf("recorded %d item ids, want 2", len(op.AddedItemIDs()))
	}

	if len(remote.removedItems) != 0 {
		t.Errorf("copy removed %v from source", remote.removedItems)
	}
}

func TestPasteCutRemovesOnlyAfterAllAddsSucceed(t *testing.T) {
	remote := newFakeRemote(10000)
	videos := testVideos("a", "b", "c")

	op := NewPasteOp(remote, videos, "pl-target", "pl-source", true)

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Every add call must precede every remove call.
	lastAdd, firstRemove := -1, len(remote.calls)

	for i, call := range remote.calls {
		if strings.HasPrefix(call, "add ") && i > lastAdd {
			lastAdd = i
		}

		if strings.HasPrefix(call, "remove ") && i < firstRemove {
			firstRemove = i
		}
	}

	if lastAdd > firstRemove {
		t.Errorf("remove before add in call order: %v", remote.calls)
	}

	if len(remote.removedItems) != 3 {
		t.Errorf("removed %d source items, want 3", len(remote.removedItems))
	}
}

func TestPasteCutSkipsRemovesWhenAddFails(t *testing.T) {
	remote := newFakeRemote(10000)
	remote.failAddVideo["b-id"] = &RemoteError{Status: 500, Message: "boom"}
	videos := testVideos("a", "b", "c")

	op := NewPasteOp(remote, videos, "pl-target", "pl-source", true)

	err := op.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute succeeded with a failing add")
	}

	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("err = %T, want *BatchError", err)
	}

	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Errorf("batch = %d/%d, want 2 succeeded, 1 failed", batch.Succeeded, batch.Failed)
	}

	if len(remote.removedItems) != 0 {
		t.Errorf("source items removed despite failed add: %v", remote.removedItems)
	}

	// Failed paste is re-executable, not undoable.
	if uErr := op.Undo(context.Background()); !errors.Is(uErr, ErrNotExecuted) {
		t.Errorf("Undo after failed execute = %v, want ErrNotExecuted", uErr)
	}
}

func TestPasteUndoRemovesAddedAndRestoresCut(t *testing.T) {
	remote := newFakeRemote(10000)
	videos := testVideos("a", "b")

	op := NewPasteOp(remote, videos, "pl-target", "pl-source", true)

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	added := op.AddedItemIDs()
	remote.removedItems = nil
	remote.addedVideos = nil

	if err := op.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(remote.removedItems) != len(added) {
		t.Errorf("undo removed %v, want the %d pasted items", remote.removedItems, len(added))
	}

	for _, videoID := range []string{"a-id", "b-id"} {
		found := false
		for _, added := range remote.addedVideos {
			if added == videoID {
				found = true
			}
		}

		if !found {
			t.Errorf("undo did not re-add %s to source", videoID)
		}
	}
}

func TestPasteCopyUndoDoesNotTouchSource(t *testing.T) {
	remote := newFakeRemote(10000)

	op := NewPasteOp(remote, testVideos("a"), "pl-target", "pl-source", false)

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	remote.addedVideos = nil

	if err := op.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(remote.addedVideos) != 0 {
		t.Errorf("copy undo re-added videos: %v", remote.addedVideos)
	}
}

func TestPasteExecuteTwiceRejected(t *testing.T) {
	remote := newFakeRemote(10000)
	op := NewPasteOp(remote, testVideos("a"), "pl-target", "", false)

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if err := op.Execute(context.Background()); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("second Execute = %v, want ErrAlreadyExecuted", err)
	}
}

func TestPasteCost(t *testing.T) {
	copyOp := NewPasteOp(nil, testVideos("a", "b", "c"), "t", "s", false)
	if copyOp.Cost() != 3*CostInsert {
		t.Errorf("copy cost = %d, want %d", copyOp.Cost(), 3*CostInsert)
	}

	cutOp := NewPasteOp(nil, testVideos("a", "b", "c"), "t", "s", true)
	if cutOp.Cost() != 3*(CostInsert+CostDelete) {
		t.Errorf("cut cost = %d, want %d", cutOp.Cost(), 3*(CostInsert+CostDelete))
	}
}

// ---- CreateContainer ----

func TestCreateContainerRoundTrip(t *testing.T) {
	remote := newFakeRemote(10000)
	op := NewCreateContainerOp(remote, "Mix", "desc", playlist.PrivacyPrivate)

	if op.Cost() != CostInsert {
		t.Errorf("cost = %d, want %d", op.Cost(), CostInsert)
	}

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if op.CreatedID() == "" {
		t.Fatal("created id not recorded")
	}

	if err := op.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	want := fmt.Sprintf("delete-playlist %s", op.CreatedID())
	if remote.calls[len(remote.calls)-1] != want {
		t.Errorf("last call = %q, want %q", remote.calls[len(remote.calls)-1], want)
	}
}

func TestCreateContainerUndoBeforeExecute(t *testing.T) {
	op := NewCreateContainerOp(newFakeRemote(10000), "Mix", "", playlist.PrivacyPrivate)

	if err := op.Undo(context.Background()); !errors.Is(err, ErrNotExecuted) {
		t.Errorf("Undo = %v, want ErrNotExecuted", err)
	}
}

// ---- Rename ----

func TestRenameExecuteUndoSymmetry(t *testing.T) {
	remote := newFakeRemote(10000)
	op := NewRenameOp(remote, RenamePlaylistTarget, "pl-1", "Old", "New")

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if err := op.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(remote.renamedTitles) != 2 || remote.renamedTitles[0] != "New" || remote.renamedTitles[1] != "Old" {
		t.Errorf("renames = %v, want [New Old]", remote.renamedTitles)
	}

	// Redo applies the new title again.
	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("re-Execute: %v", err)
	}

	if got := remote.renamedTitles[2]; got != "New" {
		t.Errorf("redo renamed to %q, want New", got)
	}
}

func TestRenameVideoTargetsVideoCall(t *testing.T) {
	remote := newFakeRemote(10000)
	op := NewRenameOp(remote, RenameVideoTarget, "vid-1", "Old", "New")

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.HasPrefix(remote.calls[0], "rename-video ") {
		t.Errorf("call = %q, want rename-video", remote.calls[0])
	}
}

// ---- DeleteItems ----

func TestDeleteItemsExecute(t *testing.T) {
	remote := newFakeRemote(10000)
	videos := testVideos("a", "b")
	op := NewDeleteItemsOp(remote, "pl-1", videos)

	if op.Cost() != 2*CostDelete {
		t.Errorf("cost = %d, want %d", op.Cost(), 2*CostDelete)
	}

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(remote.removedItems) != 2 {
		t.Errorf("removed %d items, want 2", len(remote.removedItems))
	}
}

func TestDeleteItemsPartialFailure(t *testing.T) {
	remote := newFakeRemote(10000)
	remote.failRemove["b-item"] = &RemoteError{Status: 404, Message: "gone"}

	op := NewDeleteItemsOp(remote, "pl-1", testVideos("a", "b", "c"))

	err := op.Execute(context.Background())

	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("err = %T, want *BatchError", err)
	}

	if batch.Succeeded != 2 || batch.Failed != 1 {
		t.Errorf("batch = %d/%d, want 2/1", batch.Succeeded, batch.Failed)
	}
}

func TestDeleteItemsUndoReAddsByVideoID(t *testing.T) {
	remote := newFakeRemote(10000)
	op := NewDeleteItemsOp(remote, "pl-1", testVideos("a", "b"))

	if err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if err := op.Undo(context.Background()); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(remote.addedVideos) != 2 {
		t.Errorf("undo re-added %d videos, want 2", len(remote.addedVideos))
	}

	if !strings.Contains(op.Description(), "best-effort") {
		t.Errorf("description %q does not flag best-effort undo", op.Description())
	}
}
