package center

import (
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

// Attributes set on toast elements. Renderers read them back.
const (
	AttrToastID  = "data-toast-id"
	AttrSeverity = "data-severity"
	AttrState    = "data-state"
	AttrRole     = "data-role"
	AttrDismiss  = "data-dismiss"

	RoleMessage = "message"
)

// ElementID returns the element id used for a toast.
func ElementID(toastID string) string {
	return "toast-" + toastID
}

// buildToast assembles the element tree for n. The message is placed as
// literal text and never interpreted as markup.
func buildToast(n *model.Notification, pos config.Position) *surface.Element {
	style := theme.For(n.Severity)

	el := surface.NewElement("div")
	el.ID = ElementID(n.ID)
	el.AddClass(theme.ToastBaseClasses...)
	el.AddClass(theme.HiddenClasses(pos)...)
	el.AddClass(style.Classes...)
	el.SetAttr("role", ariaRole(n.Severity))
	el.SetAttr(AttrToastID, n.ID)
	el.SetAttr(AttrSeverity, n.Severity.String())
	el.SetAttr(AttrState, n.State.String())

	message := surface.NewText("span", n.Message).AddClass("font-medium")
	message.SetAttr(AttrRole, RoleMessage)

	body := surface.NewElement("div").AddClass("flex", "items-center")
	body.Append(icon(style.IconPath, "w-5", "h-5", "mr-2"), message)

	dismiss := surface.NewElement("button").
		AddClass("ml-4", "text-current", "opacity-70", "hover:opacity-100", "focus:outline-none").
		SetAttr("type", "button").
		SetAttr("aria-label", "Dismiss notification").
		SetAttr(AttrDismiss, n.ID)
	dismiss.AppendChild(icon(theme.DismissIconPath, "w-4", "h-4"))

	row := surface.NewElement("div").AddClass("flex", "items-center", "justify-between", "max-w-sm")
	row.Append(body, dismiss)

	return el.AppendChild(row)
}

func icon(path string, classes ...string) *surface.Element {
	svg := surface.NewElement("svg").AddClass(classes...).
		SetAttr("fill", "currentColor").
		SetAttr("viewBox", "0 0 20 20").
		SetAttr("aria-hidden", "true")
	svg.AppendChild(surface.NewElement("path").
		SetAttr("fill-rule", "evenodd").
		SetAttr("d", path).
		SetAttr("clip-rule", "evenodd"))
	return svg
}

func ariaRole(sev model.Severity) string {
	switch sev {
	case model.SeverityError, model.SeverityWarning:
		return "alert"
	default:
		return "status"
	}
}

// allSurfacePositionClasses lists the anchoring classes of every position.
func allSurfacePositionClasses() []string {
	return []string{"top-4", "bottom-4", "left-4", "right-4"}
}
