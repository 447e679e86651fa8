package game

// Map content types as reported by the API
const (
	ContentTypeMonster       = "monster"
	ContentTypeResource      = "resource"
	ContentTypeBank          = "bank"
	ContentTypeWorkshop      = "workshop"
	ContentTypeTasksMaster   = "tasks_master"
	ContentTypeGrandExchange = "grand_exchange"
	ContentTypeNPC           = "npc"
)

// MapTile is one world cell. Content is empty for plain terrain.
type MapTile struct {
	X           int
	Y           int
	Name        string
	ContentType string
	ContentCode string
}

// HasContent reports whether the tile hosts interactable content
func (t MapTile) HasContent() bool {
	return t.ContentType != ""
}
