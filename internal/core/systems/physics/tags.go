package physics

import "github.com/zeusync/zengine/internal/core/models"

// BodyTag is stored as the user data of a native body and names the
// entity the body belongs to. A tag whose entity is NoEntity has been
// released and never resolves.
type BodyTag struct {
	Entity models.EntityID
}

// EntityOf resolves native body user data to an entity id.
func EntityOf(userData any) (models.EntityID, bool) {
	tag, ok := userData.(*BodyTag)
	if !ok || tag == nil || !tag.Entity.Valid() {
		return models.NoEntity, false
	}
	return tag.Entity, true
}
