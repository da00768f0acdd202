package dbus

import "fmt"

// EmitPopupClosed emits the PopupClosed signal once a tooltip has been torn
// down, whether it faded out, auto-closed or was replaced.
func (s *TooltipServer) EmitPopupClosed(id string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.conn.Emit(DBusPath, DBusInterface+".PopupClosed", id); err != nil {
		return fmt.Errorf("failed to emit PopupClosed signal: %w", err)
	}

	s.logger.Debug("emitted PopupClosed signal", "id", id)
	return nil
}
