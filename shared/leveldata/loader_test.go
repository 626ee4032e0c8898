package leveldata

import (
	"testing"
	"testing/fstest"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/shared/terrain"
)

const hangarTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="10" height="8" tilewidth="16" tileheight="16" infinite="0" nextlayerid="3" nextobjectid="5">
 <objectgroup id="1" name="Solid">
  <object id="1" x="0" y="0" width="160" height="16"/>
 </objectgroup>
 <objectgroup id="2" name="PlayerSpawn">
  <object id="2" x="100" y="50">
   <properties>
    <property name="team" type="int" value="1"/>
    <property name="spawnIndex" type="int" value="1"/>
   </properties>
  </object>
  <object id="3" x="20" y="50">
   <properties>
    <property name="team" type="int" value="0"/>
   </properties>
  </object>
  <object id="4" x="120" y="90">
   <properties>
    <property name="team" type="int" value="1"/>
    <property name="spawnIndex" type="int" value="0"/>
   </properties>
  </object>
 </objectgroup>
</map>
`

func TestLoadHangar(t *testing.T) {
	fsys := fstest.MapFS{"levels/hangar.tmx": {Data: []byte(hangarTMX)}}
	lvl, err := LoadHangar(fsys, "levels/hangar.tmx")
	if err != nil {
		t.Fatalf("LoadHangar: %v", err)
	}
	if lvl.Name != "hangar" {
		t.Errorf("Name = %q", lvl.Name)
	}
	if lvl.MapWidth != 160 || lvl.MapHeight != 128 {
		t.Errorf("map size = %vx%v", lvl.MapWidth, lvl.MapHeight)
	}
	if len(lvl.Solids) != 1 || lvl.Solids[0].W != 160 {
		t.Errorf("solids = %+v", lvl.Solids)
	}
	if len(lvl.Spawns[netconfig.TeamRed]) != 1 || len(lvl.Spawns[netconfig.TeamBlue]) != 2 {
		t.Fatalf("spawns = %+v", lvl.Spawns)
	}
	if blue := lvl.Spawns[netconfig.TeamBlue]; blue[0].X != 120 || blue[1].X != 100 {
		t.Errorf("blue spawns not ordered by spawnIndex: %+v", blue)
	}
}

func TestLoadHangarMissingFile(t *testing.T) {
	if _, err := LoadHangar(fstest.MapFS{}, "nope.tmx"); err == nil {
		t.Fatal("expected error for missing map")
	}
}

func TestFromGridMergesRuns(t *testing.T) {
	g := &terrain.Grid{
		Width:  4,
		Height: 2,
		Solid: []bool{
			true, true, false, true,
			false, false, false, false,
		},
		Spawns: [][]terrain.Point{{{X: 1, Y: 1}}, {{X: 2, Y: 1}}},
	}
	lvl := FromGrid(g, 10)
	if len(lvl.Solids) != 2 {
		t.Fatalf("got %d rects, want 2: %+v", len(lvl.Solids), lvl.Solids)
	}
	if lvl.Solids[0] != (Rect{X: 0, Y: 0, W: 20, H: 10}) {
		t.Errorf("first run = %+v", lvl.Solids[0])
	}
	if sp := lvl.Spawns[netconfig.TeamBlue][0]; sp.X != 25 || sp.Y != 15 {
		t.Errorf("blue spawn = %+v, want tile centre", sp)
	}
}
