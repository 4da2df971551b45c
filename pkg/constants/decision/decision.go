package decision

type Decision string

const (
	NONE  Decision = "NONE"
	BUY   Decision = "BUY"
	SELL  Decision = "SELL"
	FIX   Decision = "FIX"
	CLOSE Decision = "CLOSE"
)

// Intent is the order-level meaning of a controller action.
type Intent string

const (
	OPEN_LONG    Intent = "OPEN_LONG"
	OPEN_SHORT   Intent = "OPEN_SHORT"
	ADD          Intent = "ADD"
	REDUCE       Intent = "REDUCE"
	CLOSE_ALL    Intent = "CLOSE"
	SET_STOP     Intent = "SET_STOP"
	REPLACE_STOP Intent = "REPLACE_STOP"
	CANCEL       Intent = "CANCEL"
)
