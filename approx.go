package quadrant

// Approx is the capability a compression backend implements.
// CompressNode and ExpandNode are an approximate inverse pair, exactness is not required.
// State S is private to the backend and is passed to every call.
type Approx[A, B Embeddable, S any] interface {
	// ColorBase maps base cell to its display color.
	ColorBase(state *S, base A) (Color, error)

	// CompressBase turns base cell into an embedding.
	CompressBase(state *S, base A) (B, error)

	// ExpandBase turns embedding back into the base cell.
	ExpandBase(state *S, embedding B) (A, error)

	// CompressNode combines embeddings of four children into the embedding of their parent.
	CompressNode(state *S, children [4]B) (B, error)

	// ExpandNode splits parent embedding into embeddings of its four children.
	ExpandNode(state *S, embedding B) ([4]B, error)
}

// Operation identifies the capability call reported to the observer.
type Operation byte

// Capability operations.
const (
	OperationColorBase Operation = iota
	OperationCompressBase
	OperationExpandBase
	OperationCompressNode
	OperationExpandNode
)

func (o Operation) String() string {
	switch o {
	case OperationColorBase:
		return "color_base"
	case OperationCompressBase:
		return "compress_base"
	case OperationExpandBase:
		return "expand_base"
	case OperationCompressNode:
		return "compress_node"
	case OperationExpandNode:
		return "expand_node"
	default:
		return "unknown"
	}
}

// Observer is notified about every capability call executed by the context.
// Observer is shared by forked contexts, so it must be safe for concurrent use.
type Observer interface {
	Observe(op Operation, err error)
}

type noopObserver struct{}

func (noopObserver) Observe(Operation, error) {}
