package scene

// Handle is an opaque live scene element produced by a Factory. The
// editing core manipulates its geometry and never looks inside.
type Handle interface {
	Transform

	// SetVisible shows or hides the rendered element.
	SetVisible(visible bool)

	// Destroy removes the element from the running scene.
	Destroy()
}

// Factory instantiates scene elements. It is an external collaborator:
// texture loading, procedural drawing and light parameters all live
// behind this interface.
type Factory interface {
	// Instantiate creates a new live element for the asset, applying
	// the kind-specific config bag.
	Instantiate(assetID string, config map[string]any) (Handle, error)

	// IsSingleton reports whether the asset is constrained to at most
	// one instance.
	IsSingleton(assetID string) bool

	// IsRequired reports whether the asset must always exist. Required
	// elements can be hidden but never deleted.
	IsRequired(assetID string) bool

	// DependenciesOf returns asset IDs the given asset depends on.
	DependenciesOf(assetID string) []string
}
