package msgs

const (
	MsgOperationFailed       = "Operation failed"
	MsgOperationSuccessful   = "Operation successful"
	MsgYouMustLoginFirst     = "You must login first"
	MsgCanvasCreated         = "Canvas created successfully"
	MsgObjectCreated         = "Canvas object created successfully"
	MsgObjectDeleted         = "Canvas object deleted successfully"
	MsgObjectsFetched        = "Canvas objects fetched successfully"
)
