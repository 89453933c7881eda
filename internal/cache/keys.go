package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// UserListingPrefix is shared by every cached page of the user directory.
const UserListingPrefix = "users:"

// OwnerPrefix returns the key prefix shared by every cached listing of ownerID.
func OwnerPrefix(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:", ownerID)
}

// ListingKey returns the cache key for one page of ownerID's task listing.
func ListingKey(ownerID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", OwnerPrefix(ownerID), page, pageSize)
}

// UserListingKey returns the cache key for one page of the user directory.
func UserListingKey(page, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", UserListingPrefix, page, pageSize)
}
