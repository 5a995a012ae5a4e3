package main

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"go.uber.org/zap"
)

func CatchPanicToContext(ctxCancel context.CancelCauseFunc) {
	if v := recover(); v != nil {
		err, ok := v.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", v)
		}
		err = fmt.Errorf("%w\n%v", err, string(debug.Stack()))
		if ctxCancel != nil {
			ctxCancel(err)
		}
	}
}

// NewErrorDialog shows err in a modal dialog and returns once it is closed.
// Without a display it only logs why the dialog couldn't be shown.
func NewErrorDialog(log *zap.SugaredLogger, err error) {
	glib.SetPrgname("glstress")
	if initErr := gtk.InitCheck(nil); initErr != nil {
		log.Warnw("can't show error dialog", "err", initErr)
		return
	}

	dialog := gtk.MessageDialogNew(
		nil,
		gtk.DIALOG_MODAL,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		"GPU Stresser failed",
	)
	dialog.FormatSecondaryText("%s", err.Error())
	dialog.SetTitle(windowTitle)

	messageArea, areaErr := dialog.GetMessageArea()
	if areaErr != nil {
		log.Warnw("can't get dialog message area", "err", areaErr)

	} else {
		messageArea.GetChildren().Foreach(func(item interface{}) {
			if widget, ok := item.(*gtk.Widget); ok {
				l, err := gtk.WidgetToLabel(widget)
				if err != nil {
					return
				}

				l.SetSelectable(true)
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.Run()
	dialog.Destroy()
}
