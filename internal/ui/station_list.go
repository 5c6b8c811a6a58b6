package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/substream/internal/stationlist"
)

// StationList renders a stationlist.Model as a fyne list with one icon and
// label per station. Tapping selects, double tapping activates.
type StationList struct {
	model *stationlist.Model
	icons []fyne.Resource
	list  *widget.List

	syncing bool
}

// NewStationList builds the widget and shows the model's current selection.
func NewStationList(model *stationlist.Model) *StationList {
	s := &StationList{
		model: model,
		icons: make([]fyne.Resource, model.Len()),
	}
	for i := range s.icons {
		s.icons[i] = DefaultStationIcon()
	}
	s.list = widget.NewList(
		model.Len,
		func() fyne.CanvasObject { return newStationRow(s) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*stationRow)
			row.id = id
			row.label.SetText(model.Item(id).Name)
			row.icon.Resource = s.icons[id]
			row.icon.Refresh()
		},
	)
	s.list.OnSelected = func(id widget.ListItemID) {
		if s.syncing {
			return
		}
		s.model.Select(id)
	}
	s.SyncSelection()
	return s
}

// CanvasObject returns the list widget.
func (s *StationList) CanvasObject() fyne.CanvasObject { return s.list }

// SetIcon replaces the thumbnail of row i.
func (s *StationList) SetIcon(i int, res fyne.Resource) {
	if i < 0 || i >= len(s.icons) || res == nil {
		return
	}
	s.icons[i] = res
	s.list.RefreshItem(i)
}

// Icon returns the thumbnail currently shown for row i.
func (s *StationList) Icon(i int) fyne.Resource { return s.icons[i] }

// SyncSelection highlights the model's selected row without feeding the
// change back into the model.
func (s *StationList) SyncSelection() {
	idx, _ := s.model.Selected()
	s.syncing = true
	s.list.Select(idx)
	s.syncing = false
}

type stationRow struct {
	widget.BaseWidget
	owner *StationList
	id    widget.ListItemID
	icon  *canvas.Image
	label *widget.Label
}

func newStationRow(owner *StationList) *stationRow {
	img := canvas.NewImageFromResource(DefaultStationIcon())
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(StationIconSize, StationIconSize))
	r := &stationRow{owner: owner, icon: img, label: widget.NewLabel("")}
	r.ExtendBaseWidget(r)
	return r
}

func (r *stationRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, r.icon, nil, r.label))
}

// Tapped selects the row; the list item underneath never sees the tap.
func (r *stationRow) Tapped(*fyne.PointEvent) {
	r.owner.model.Select(r.id)
	r.owner.SyncSelection()
}

// DoubleTapped activates the row, which plays the station.
func (r *stationRow) DoubleTapped(*fyne.PointEvent) {
	r.owner.model.Activate(r.id)
	r.owner.SyncSelection()
}
