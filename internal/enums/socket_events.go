package enums

// Client gesture events arriving on the canvas socket.
const (
	SOCKET_EVENT_MOVE_OBJECT     = "move_object"
	SOCKET_EVENT_RESIZE_OBJECT   = "resize_object"
	SOCKET_EVENT_ROTATE_OBJECT   = "rotate_object"
	SOCKET_EVENT_BRING_TO_FRONT  = "bring_to_front"
	SOCKET_EVENT_DELETE_OBJECTS  = "delete_objects"
	SOCKET_EVENT_SELECT_ALL      = "select_all"
	SOCKET_EVENT_CLEAR_SELECTION = "clear_selection"
)
