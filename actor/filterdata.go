package actor

// FilterData is the four word filter record carried by every query and
// every collidable shape. The meaning of each word is owned by the filter
// package; the SDK only stores and passes it around.
type FilterData struct {
	Word0 uint32
	Word1 uint32
	Word2 uint32
	Word3 uint32
}

func (f FilterData) IsZero() bool {
	return f == FilterData{}
}
