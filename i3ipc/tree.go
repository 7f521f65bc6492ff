package i3ipc

// Node is a container in the i3 layout tree: the root, an output, a
// workspace, a split container or a window.
type Node struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Focused bool   `json:"focused"`

	// AppID is set by sway for native Wayland windows.
	AppID string `json:"app_id,omitempty"`

	// WindowProperties is nil for containers and Wayland windows.
	WindowProperties *WindowProperties `json:"window_properties,omitempty"`

	Nodes         []*Node `json:"nodes"`
	FloatingNodes []*Node `json:"floating_nodes"`
}

// WindowProperties holds the X11 properties of a window.
type WindowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Title    string `json:"title"`
}

// Class returns the window class, or "" if the node has none.
func (n *Node) Class() string {
	if n.WindowProperties == nil {
		return ""
	}
	return n.WindowProperties.Class
}

// FindFocused returns the focused node in the tree rooted at n, or nil.
// Tiling children are searched before floating ones.
func (n *Node) FindFocused() *Node {
	return n.Find(func(node *Node) bool { return node.Focused })
}

// Find returns the first node, in depth-first order, for which match
// returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for _, child := range n.Nodes {
		if found := child.Find(match); found != nil {
			return found
		}
	}
	for _, child := range n.FloatingNodes {
		if found := child.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// CommandResult is the outcome of one command in a RUN_COMMAND request.
type CommandResult struct {
	Success    bool   `json:"success"`
	ParseError bool   `json:"parse_error,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Version is the reply to GET_VERSION.
type Version struct {
	Major                int    `json:"major"`
	Minor                int    `json:"minor"`
	Patch                int    `json:"patch"`
	HumanReadable        string `json:"human_readable"`
	LoadedConfigFileName string `json:"loaded_config_file_name"`
}
