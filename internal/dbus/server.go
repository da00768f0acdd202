package dbus

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the tooltip interface name.
	DBusInterface = "io.github.jmylchreest.Tetratip1"
	// DBusPath is the tooltip object path.
	DBusPath = "/io/github/jmylchreest/Tetratip"
)

// TooltipServer implements the tooltip D-Bus interface.
type TooltipServer struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	busName string
	handler Handler

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewTooltipServer creates a new TooltipServer that claims busName.
func NewTooltipServer(busName string, handler Handler, logger *slog.Logger) *TooltipServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TooltipServer{
		logger:     logger,
		busName:    busName,
		handler:    handler,
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *TooltipServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start connects to the session bus and exports the tooltip service.
func (s *TooltipServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: tooltipMethods(),
				Signals: tooltipSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", s.busName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus tooltip server started", "name", s.busName, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *TooltipServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(s.busName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus tooltip server stopped")
	return nil
}

// GetServerInformation returns information about the tooltip server.
// D-Bus method: GetServerInformation() -> (sss)
func (s *TooltipServer) GetServerInformation() (string, string, string, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, nil
}

// Show displays a tooltip next to the mouse pointer.
// D-Bus method: Show(ssa{sv}) -> s
func (s *TooltipServer) Show(title, text string, hints map[string]dbus.Variant) (string, *dbus.Error) {
	return s.show(&ShowRequest{Title: title, Text: text, Hints: hints, Mode: ModePointer})
}

// ShowAt displays a tooltip at a screen point.
// D-Bus method: ShowAt(ssiia{sv}) -> s
func (s *TooltipServer) ShowAt(title, text string, x, y int32, hints map[string]dbus.Variant) (string, *dbus.Error) {
	p := image.Pt(int(x), int(y))
	return s.show(&ShowRequest{
		Title: title, Text: text, Hints: hints,
		Mode: ModePoint,
		Area: image.Rectangle{Min: p, Max: p},
	})
}

// ShowAvoiding displays a tooltip that does not cover a screen area.
// D-Bus method: ShowAvoiding(ssiiiia{sv}) -> s
func (s *TooltipServer) ShowAvoiding(title, text string, x, y, width, height int32, hints map[string]dbus.Variant) (string, *dbus.Error) {
	if width < 0 || height < 0 {
		return "", dbus.MakeFailedError(errors.New("width and height must not be negative"))
	}
	return s.show(&ShowRequest{
		Title: title, Text: text, Hints: hints,
		Mode: ModeAvoid,
		Area: image.Rect(int(x), int(y), int(x+width), int(y+height)),
	})
}

// Hide closes the current tooltip, if any.
// D-Bus method: Hide() -> nothing
func (s *TooltipServer) Hide() *dbus.Error {
	s.logger.Debug("Hide called")
	if s.handler != nil {
		s.handler.Hide()
	}
	return nil
}

func (s *TooltipServer) show(req *ShowRequest) (string, *dbus.Error) {
	s.logger.Debug("Show called", "mode", req.Mode.String(), "title", req.Title, "area", req.Area)

	if s.handler == nil {
		return "", dbus.MakeFailedError(errors.New("no tooltip handler"))
	}
	id, err := s.handler.Show(req)
	if err != nil {
		s.logger.Warn("failed to show tooltip", "error", err)
		return "", dbus.MakeFailedError(err)
	}
	return id, nil
}

// tooltipMethods returns the D-Bus method introspection data.
func tooltipMethods() []introspect.Method {
	hints := introspect.Arg{Name: "hints", Type: "a{sv}", Direction: "in"}
	id := introspect.Arg{Name: "id", Type: "s", Direction: "out"}
	title := introspect.Arg{Name: "title", Type: "s", Direction: "in"}
	text := introspect.Arg{Name: "text", Type: "s", Direction: "in"}

	return []introspect.Method{
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Show",
			Args: []introspect.Arg{title, text, hints, id},
		},
		{
			Name: "ShowAt",
			Args: []introspect.Arg{
				title, text,
				{Name: "x", Type: "i", Direction: "in"},
				{Name: "y", Type: "i", Direction: "in"},
				hints, id,
			},
		},
		{
			Name: "ShowAvoiding",
			Args: []introspect.Arg{
				title, text,
				{Name: "x", Type: "i", Direction: "in"},
				{Name: "y", Type: "i", Direction: "in"},
				{Name: "width", Type: "i", Direction: "in"},
				{Name: "height", Type: "i", Direction: "in"},
				hints, id,
			},
		},
		{
			Name: "Hide",
		},
	}
}

// tooltipSignals returns the D-Bus signal introspection data.
func tooltipSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "PopupClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
			},
		},
	}
}
