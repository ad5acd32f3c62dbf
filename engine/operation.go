// ABOUTME: Reversible operation variants: paste, create, rename, delete
// ABOUTME: Each carries enough data to execute and undo against the remote

package engine

import (
	"context"
	"fmt"

	"yanger/playlist"
)

// Operation is a reversible unit of remote-mutating work. Execute is
// valid only while unexecuted and Undo only while executed; the flag
// flips on success of either call. Cost is the pre-flight quota estimate.
type Operation interface {
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
	Description() string
	Cost() int
}

// RenameTarget selects what a rename applies to.
type RenameTarget int

// Rename targets.
const (
	RenamePlaylistTarget RenameTarget = iota
	RenameVideoTarget
)

// ---- Paste ----

// PasteOp adds clipboard videos to a target playlist; for a cut it also
// removes them from the source, strictly after all adds succeed, so no
// item is ever in neither playlist.
type PasteOp struct {
	api              RemoteAPI
	videos           []playlist.Video
	targetPlaylistID string
	sourcePlaylistID string
	isCut            bool

	addedItemIDs []string
	executed     bool
}

// NewPasteOp builds a paste of the given videos into target.
func NewPasteOp(api RemoteAPI, videos []playlist.Video, targetPlaylistID, sourcePlaylistID string, isCut bool) *PasteOp {
	return &PasteOp{
		api:              api,
		videos:           videos,
		targetPlaylistID: targetPlaylistID,
		sourcePlaylistID: sourcePlaylistID,
		isCut:            isCut,
	}
}

func (op *PasteOp) Description() string {
	action := "Copy"
	if op.isCut {
		action = "Move"
	}

	return fmt.Sprintf("%s %d video(s)", action, len(op.videos))
}

// Cost is one insert per video, doubled for a cut (insert plus delete).
func (op *PasteOp) Cost() int {
	cost := CostInsert * len(op.videos)
	if op.isCut {
		cost += CostDelete * len(op.videos)
	}

	return cost
}

func (op *PasteOp) Execute(ctx context.Context) error {
	if op.executed {
		return ErrAlreadyExecuted
	}

	op.addedItemIDs = op.addedItemIDs[:0]

	var failed int
	var firstErr error

	for _, v := range op.videos {
		itemID, err := op.api.AddVideo(ctx, v.ID, op.targetPlaylistID)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		op.addedItemIDs = append(op.addedItemIDs, itemID)
	}

	if failed > 0 {
		return &BatchError{Succeeded: len(op.addedItemIDs), Failed: failed, First: firstErr}
	}

	// Removes happen only after every add succeeded.
	if op.isCut {
		removed := 0

		for _, v := range op.videos {
			if v.PlaylistItemID == "" {
				continue
			}

			if err := op.api.RemoveVideo(ctx, v.PlaylistItemID); err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}

				continue
			}

			removed++
		}

		if failed > 0 {
			return &BatchError{Succeeded: len(op.addedItemIDs) + removed, Failed: failed, First: firstErr}
		}
	}

	op.executed = true

	return nil
}

// Undo removes every recorded added item and, for a cut, re-adds the
// originals to the source playlist. Original positions are not restored;
// the remote has no way to recover them.
func (op *PasteOp) Undo(ctx context.Context) error {
	if !op.executed {
		return ErrNotExecuted
	}

	for _, itemID := range op.addedItemIDs {
		if err := op.api.RemoveVideo(ctx, itemID); err != nil {
			return err
		}
	}

	if op.isCut && op.sourcePlaylistID != "" {
		for _, v := range op.videos {
			if _, err := op.api.AddVideo(ctx, v.ID, op.sourcePlaylistID); err != nil {
				return err
			}
		}
	}

	op.addedItemIDs = nil
	op.executed = false

	return nil
}

// AddedItemIDs returns the playlist-item ids recorded by Execute.
func (op *PasteOp) AddedItemIDs() []string {
	out := make([]string, len(op.addedItemIDs))
	copy(out, op.addedItemIDs)

	return out
}

// TargetPlaylistID returns the paste target.
func (op *PasteOp) TargetPlaylistID() string { return op.targetPlaylistID }

// SourcePlaylistID returns the cut source ("" for a copy).
func (op *PasteOp) SourcePlaylistID() string { return op.sourcePlaylistID }

// ---- CreateContainer ----

// CreateContainerOp creates a playlist; undo deletes it by recorded id.
type CreateContainerOp struct {
	api         RemoteAPI
	title       string
	description string
	privacy     playlist.Privacy

	createdID string
	executed  bool
}

// NewCreateContainerOp builds a playlist creation.
func NewCreateContainerOp(api RemoteAPI, title, description string, privacy playlist.Privacy) *CreateContainerOp {
	return &CreateContainerOp{api: api, title: title, description: description, privacy: privacy}
}

func (op *CreateContainerOp) Description() string {
	return fmt.Sprintf("Create playlist: %s", op.title)
}

func (op *CreateContainerOp) Cost() int { return CostInsert }

func (op *CreateContainerOp) Execute(ctx context.Context) error {
	if op.executed {
		return ErrAlreadyExecuted
	}

	id, err := op.api.CreatePlaylist(ctx, op.title, op.description, op.privacy)
	if err != nil {
		return err
	}

	op.createdID = id
	op.executed = true

	return nil
}

func (op *CreateContainerOp) Undo(ctx context.Context) error {
	if !op.executed || op.createdID == "" {
		return ErrNotExecuted
	}

	if err := op.api.DeletePlaylist(ctx, op.createdID); err != nil {
		return err
	}

	op.executed = false

	return nil
}

// CreatedID returns the id recorded by Execute ("" before execution).
func (op *CreateContainerOp) CreatedID() string { return op.createdID }

// ---- Rename ----

// RenameOp renames a playlist or video; undo restores the old title.
type RenameOp struct {
	api      RemoteAPI
	target   RenameTarget
	targetID string
	oldTitle string
	newTitle string

	executed bool
}

// NewRenameOp builds a rename of a playlist or video.
func NewRenameOp(api RemoteAPI, target RenameTarget, targetID, oldTitle, newTitle string) *RenameOp {
	return &RenameOp{api: api, target: target, targetID: targetID, oldTitle: oldTitle, newTitle: newTitle}
}

func (op *RenameOp) Description() string {
	kind := "playlist"
	if op.target == RenameVideoTarget {
		kind = "video"
	}

	return fmt.Sprintf("Rename %s: %s -> %s", kind, op.oldTitle, op.newTitle)
}

func (op *RenameOp) Cost() int { return CostUpdate }

func (op *RenameOp) Execute(ctx context.Context) error {
	if op.executed {
		return ErrAlreadyExecuted
	}

	if err := op.apply(ctx, op.newTitle); err != nil {
		return err
	}

	op.executed = true

	return nil
}

func (op *RenameOp) Undo(ctx context.Context) error {
	if !op.executed {
		return ErrNotExecuted
	}

	if err := op.apply(ctx, op.oldTitle); err != nil {
		return err
	}

	op.executed = false

	return nil
}

func (op *RenameOp) apply(ctx context.Context, title string) error {
	if op.target == RenamePlaylistTarget {
		return op.api.RenamePlaylist(ctx, op.targetID, title)
	}

	return op.api.RenameVideo(ctx, op.targetID, title)
}

// ---- DeleteItems ----

// DeleteItemsOp removes videos from a playlist. The remote cannot restore
// deleted memberships, so undo re-adds the videos by id as a best effort:
// original position and membership metadata are not recovered, and the
// description says so.
type DeleteItemsOp struct {
	api        RemoteAPI
	playlistID string
	videos     []playlist.Video

	executed bool
}

// NewDeleteItemsOp builds a deletion of videos from a playlist.
func NewDeleteItemsOp(api RemoteAPI, playlistID string, videos []playlist.Video) *DeleteItemsOp {
	return &DeleteItemsOp{api: api, playlistID: playlistID, videos: videos}
}

func (op *DeleteItemsOp) Description() string {
	return fmt.Sprintf("Delete %d video(s) (undo is best-effort)", len(op.videos))
}

func (op *DeleteItemsOp) Cost() int { return CostDelete * len(op.videos) }

func (op *DeleteItemsOp) Execute(ctx context.Context) error {
	if op.executed {
		return ErrAlreadyExecuted
	}

	var succeeded, failed int
	var firstErr error

	for _, v := range op.videos {
		if err := op.api.RemoveVideo(ctx, v.PlaylistItemID); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		succeeded++
	}

	if failed > 0 {
		return &BatchError{Succeeded: succeeded, Failed: failed, First: firstErr}
	}

	op.executed = true

	return nil
}

func (op *DeleteItemsOp) Undo(ctx context.Context) error {
	if !op.executed {
		return ErrNotExecuted
	}

	var succeeded, failed int
	var firstErr error

	for _, v := range op.videos {
		if _, err := op.api.AddVideo(ctx, v.ID, op.playlistID); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		succeeded++
	}

	if failed > 0 {
		return &BatchError{Succeeded: succeeded, Failed: failed, First: firstErr}
	}

	op.executed = false

	return nil
}

// PlaylistID returns the playlist the videos were deleted from.
func (op *DeleteItemsOp) PlaylistID() string { return op.playlistID }
