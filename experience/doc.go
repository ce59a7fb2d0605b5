// Package experience holds the domain model shared by every layer: the
// Experience and City values and the domain error taxonomy.
//
// Values are passed by copy. Helpers such as WithLike and ReplaceByID
// return new values instead of mutating their input, which keeps the
// optimistic update protocol in the projection package easy to reason about:
//
//	optimistic := item.Optimistic()
//	recommended, _ = experience.ReplaceByID(recommended, optimistic)
//
// Errors returned by the repository are always *Error. Use errors.Is with
// the exported sentinels to branch on kind:
//
//	if errors.Is(err, experience.ErrExperienceNotFound) {
//		// render empty state
//	}
//
// Network and persistence failures keep their cause, so errors.As can still
// reach the remote or localstore error types.
package experience
