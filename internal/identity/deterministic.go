package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-manual:"

// UUID derives a stable UUID from key with go-hashid. Keys must carry their
// entity prefix so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CategoryUUID is the id of the category imported from slug.
func CategoryUUID(slug string) uuid.UUID {
	return UUID(namespace + "category:" + strings.ToLower(strings.TrimSpace(slug)))
}

// ItemUUID is the id of the item imported as slug inside a category.
func ItemUUID(categoryID uuid.UUID, slug string) uuid.UUID {
	return UUID(namespace + "item:" + categoryID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

// UserUUID is the id of the account bound to an external open id.
func UserUUID(openID string) uuid.UUID {
	return UUID(namespace + "user:" + strings.TrimSpace(openID))
}
