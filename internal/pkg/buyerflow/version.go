package buyerflow

import "github.com/leaddesk/leaddesk/app/models"

// checkVersion is the record's sole concurrency control: the caller must
// echo back the updatedAt value it last observed, compared verbatim against
// the stored record's token. There is no locking and no merge; a mismatch
// tells the caller to re-fetch and retry.
func checkVersion(stored *models.Buyer, suppliedToken string) error {
	if suppliedToken != stored.VersionToken() {
		return ErrConflict
	}
	return nil
}
