package auth

// Authorize checks that a resource's owner matches the caller.
//
// The resource store performs no owner filtering of its own, so this check
// (or an owner-filtered query) must guard every entry point that loads a
// room, device or scene by id. Succeeds silently when the IDs match;
// returns ErrNotOwner otherwise. An empty caller ID never authorizes.
func Authorize(resourceOwnerID, callerID string) error {
	if callerID == "" || resourceOwnerID != callerID {
		return ErrNotOwner
	}
	return nil
}
