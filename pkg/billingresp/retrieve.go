package billingresp

// Retrieve selects one element of container[collection].
//
//   - collection absent: ErrMissingCollection.
//   - code given: the element whose "code" renders equal to it, or the null node.
//   - no code, zero or one element: that element, or the null node.
//   - no code, several elements: ErrAmbiguousSelection.
//
// An empty code means no code was given.
func Retrieve(container Node, collection Key, code string) (Node, error) {
	if !container.Has(collection) {
		return Null(), &SelectionError{Kind: ErrMissingCollection, Collection: collection}
	}
	items := elements(container.Get(collection))
	if code != "" {
		for _, it := range items {
			if it.Get(KeyCode).String() == code {
				return it, nil
			}
		}
		return Null(), nil
	}
	switch len(items) {
	case 0:
		return Null(), nil
	case 1:
		return items[0], nil
	default:
		return Null(), &SelectionError{Kind: ErrAmbiguousSelection, Collection: collection}
	}
}

// elements views a collection value as a list. A lone map that escaped array fixup counts as
// one element.
func elements(coll Node) []Node {
	switch coll.Kind() {
	case KindSeq:
		return coll.items
	case KindNull:
		return nil
	default:
		return []Node{coll}
	}
}
