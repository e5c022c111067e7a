// Copyright 2023 the gbx authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gbx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/jussyDr/gbx/errors"
)

// The XML header mirror duplicates a subset of the binary header so that
// tools can inspect a map without decoding the body. On read it sets the uid,
// name, author, author zone, day-time mood, display cost and medal times;
// chunks read after it overwrite the fields they also carry. On write it is
// produced from the same fields as the binary header.

type xmlHeader struct {
	XMLName  xml.Name  `xml:"header"`
	Type     string    `xml:"type,attr"`
	ExeVer   string    `xml:"exever,attr"`
	ExeBuild string    `xml:"exebuild,attr"`
	Title    string    `xml:"title,attr"`
	Lightmap string    `xml:"lightmap,attr"`
	Ident    xmlIdent  `xml:"ident"`
	Desc     xmlDesc   `xml:"desc"`
	Player   xmlPlayer `xml:"playermodel"`
	Times    xmlTimes  `xml:"times"`
	Deps     xmlDeps   `xml:"deps"`
}

type xmlIdent struct {
	UID        string `xml:"uid,attr"`
	Name       string `xml:"name,attr"`
	Author     string `xml:"author,attr"`
	AuthorZone string `xml:"authorzone,attr"`
}

type xmlDesc struct {
	Envir          string `xml:"envir,attr"`
	Mood           string `xml:"mood,attr"`
	Type           string `xml:"type,attr"`
	MapType        string `xml:"maptype,attr"`
	MapStyle       string `xml:"mapstyle,attr"`
	Validated      string `xml:"validated,attr"`
	NbLaps         string `xml:"nblaps,attr"`
	DisplayCost    string `xml:"displaycost,attr"`
	Mod            string `xml:"mod,attr"`
	HasGhostBlocks string `xml:"hasghostblocks,attr"`
}

type xmlPlayer struct {
	ID string `xml:"id,attr"`
}

type xmlTimes struct {
	Bronze      string `xml:"bronze,attr"`
	Silver      string `xml:"silver,attr"`
	Gold        string `xml:"gold,attr"`
	AuthorTime  string `xml:"authortime,attr"`
	AuthorScore string `xml:"authorscore,attr"`
}

type xmlDeps struct {
	Deps []xmlDep `xml:"dep"`
}

type xmlDep struct {
	File string `xml:"file,attr"`
}

func (m *Map) readHeaderXML(s string) error {
	var header xmlHeader
	if err := xml.Unmarshal([]byte(s), &header); err != nil {
		return errors.E(errors.Payload, "invalid header xml", err)
	}
	m.uid = ID(header.Ident.UID)
	m.Name = header.Ident.Name
	m.AuthorUID = ID(header.Ident.Author)
	m.AuthorZone = header.Ident.AuthorZone

	mood := header.Desc.Mood
	mood = strings.TrimSuffix(mood, "16x12")
	mood = strings.TrimSuffix(mood, " (no stadium)")
	dayTime, err := dayTimeFromMood(mood)
	if err != nil {
		return err
	}
	m.DayTime = dayTime
	cost, err := strconv.ParseUint(header.Desc.DisplayCost, 10, 32)
	if err != nil {
		return errors.E(errors.Payload, "invalid display cost", err)
	}
	m.Cost = uint32(cost)

	times := [4]string{
		header.Times.Bronze, header.Times.Silver, header.Times.Gold, header.Times.AuthorTime,
	}
	var medalTimes [4]uint32
	validated := true
	for i, s := range times {
		if s == "-1" {
			validated = false
			break
		}
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return errors.E(errors.Payload, "invalid medal time", err)
		}
		medalTimes[i] = uint32(v)
	}
	if validated {
		m.setValidationTimes(&medalTimes)
	} else {
		m.setValidationTimes(nil)
	}
	return nil
}

func (m *Map) headerXML() (string, error) {
	hasGhostBlocks := false
	for _, block := range m.Blocks {
		if block, ok := block.(*Block); ok && block.IsGhost {
			hasGhostBlocks = true
			break
		}
	}
	times := xmlTimes{Bronze: "-1", Silver: "-1", Gold: "-1", AuthorTime: "-1", AuthorScore: "0"}
	if m.Validation != nil {
		times.Bronze = strconv.FormatUint(uint64(m.Validation.BronzeTime), 10)
		times.Silver = strconv.FormatUint(uint64(m.Validation.SilverTime), 10)
		times.Gold = strconv.FormatUint(uint64(m.Validation.GoldTime), 10)
		times.AuthorTime = strconv.FormatUint(uint64(m.Validation.AuthorTime), 10)
	}
	header := xmlHeader{
		Type:     "map",
		ExeVer:   "3.3.0",
		ExeBuild: "2023-01-26_15_32",
		Title:    "TMStadium",
		Lightmap: "0",
		Ident: xmlIdent{
			UID:        string(m.uid),
			Name:       m.Name,
			Author:     string(m.AuthorUID),
			AuthorZone: m.AuthorZone,
		},
		Desc: xmlDesc{
			Envir:          "Stadium",
			Mood:           m.moodID(),
			Type:           "Race",
			MapType:        `TrackMania\TM_Race`,
			Validated:      boolAttr(m.Validation != nil),
			NbLaps:         strconv.FormatUint(uint64(m.numLapsOr(0)), 10),
			DisplayCost:    strconv.FormatUint(uint64(m.Cost), 10),
			Mod:            m.modFileName(),
			HasGhostBlocks: boolAttr(hasGhostBlocks),
		},
		Times: times,
	}
	out, err := xml.Marshal(header)
	if err != nil {
		return "", errors.E(errors.Payload, "encoding header xml", err)
	}
	return string(out), nil
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// modFileName returns the file stem of the texture mod path.
func (m *Map) modFileName() string {
	if m.TextureMod == nil {
		return ""
	}
	name := m.TextureMod.Path
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
