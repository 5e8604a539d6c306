package main

import (
	"os"

	"github.com/akmonengine/probe"
	"github.com/akmonengine/probe/actor"
	"github.com/akmonengine/probe/component"
	"github.com/akmonengine/probe/filter"
	"github.com/akmonengine/probe/settings"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
)

const settingsPath = "probe.toml"

func main() {
	s := readSettings()

	logger := log.New()
	logger.Formatter = &log.TextFormatter{ForceColors: true}
	level, err := s.LogLevel()
	if err != nil {
		logger.WithError(err).Warn("falling back to info level")
	}
	logger.SetLevel(level)

	world, err := setupWorld(s, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed creating world")
	}
	world.Analyzer.SetRecording(s.Analyzer.Record)
	world.Analyzer.Subscribe(probe.RaycastQuery, logQuery(logger))
	world.Analyzer.Subscribe(probe.SweepQuery, logQuery(logger))
	world.Analyzer.Subscribe(probe.OverlapQuery, logQuery(logger))

	runQueries(world, s, logger)
	world.Analyzer.Flush()
}

// readSettings loads the settings file, creating it with the defaults on
// first run
func readSettings() settings.Settings {
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := settings.SaveDefault(settingsPath); err != nil {
			log.Fatalf("error creating settings: %v", err)
		}
	}

	s, err := settings.Load(settingsPath)
	if err != nil {
		log.Fatalf("error reading settings: %v", err)
	}
	return s
}

// setupWorld creates a ground, a wall of boxes in the synchronous scene
// and a convex pillar in the asynchronous one
func setupWorld(s settings.Settings, logger log.FieldLogger) (*probe.World, error) {
	cfg, err := s.CollisionConfig(logger)
	if err != nil {
		return nil, err
	}
	world := probe.NewWorld(probe.NewPhysScene(s.SceneConfig(logger), s.Scene.EnableAsyncScene), cfg)

	ground := actor.HeightFieldGeometry{
		Field:       actor.NewHeightField(9, 9),
		HeightScale: 1,
		RowScale:    100,
		ColumnScale: 100,
	}
	if err := world.AddActor(newActor(1, mgl64.Vec3{-400, -400, 0}, true, ground, filter.WorldStatic, filter.Block), probe.SceneSync); err != nil {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		position := mgl64.Vec3{float64(10 * (i + 1)), 0, 1}
		response := filter.Block
		if i == 0 {
			response = filter.Overlap
		}
		box := actor.BoxGeometry{HalfExtents: mgl64.Vec3{1, 1, 1}}
		if err := world.AddActor(newActor(uint32(i+2), position, false, box, filter.WorldDynamic, response), probe.SceneSync); err != nil {
			return nil, err
		}
	}

	if world.PhysScene.HasAsyncScene() {
		pillar := actor.ConvexMeshGeometry{Mesh: actor.NewBoxConvexMesh(mgl64.Vec3{1, 1, 5}), Scale: actor.IdentityScale()}
		if err := world.AddActor(newActor(10, mgl64.Vec3{15, 0, 5}, true, pillar, filter.WorldStatic, filter.Block), probe.SceneAsync); err != nil {
			return nil, err
		}
	}
	return world, nil
}

func newActor(id uint32, position mgl64.Vec3, static bool, g actor.Geometry, channel filter.Channel, response filter.Response) *actor.RigidActor {
	owner := &component.PrimitiveComponent{ID: id, Name: g.Type().String(), Owner: &component.Actor{ID: id, Name: "demo"}}

	a := actor.NewRigidActor(id, actor.NewTransformAt(position), static)
	a.Payload = component.BodyPayload(&component.BodyInstance{Owner: owner, InstanceBodyIndex: 0})

	shape := actor.NewShape(g, actor.NewTransform())
	shape.QueryFilterData, shape.SimulationFilterData = filter.CreateShapeFilterData(filter.ShapeFilterParams{
		Channel:     channel,
		Responses:   filter.NewResponseContainer(response),
		ActorID:     id,
		ComponentID: id,
		Static:      static,
		Complexity:  filter.FlagSimpleCollision | filter.FlagComplexCollision,
	})
	a.AttachShape(shape)
	return a
}

func runQueries(world *probe.World, s settings.Settings, logger log.FieldLogger) {
	params := filter.DefaultQueryParams()
	params.Tag = "demo"
	params.TraceAsyncScene = s.Query.TraceAsyncScene
	responses := filter.DefaultResponseParams()
	objects := filter.ObjectQueryParams{}

	start, end := mgl64.Vec3{0, 0, 1}, mgl64.Vec3{100, 0, 1}
	channel := filter.Visibility

	logger.WithField("blocked", world.RaycastTest(start, end, channel, params, responses, objects)).Info("RaycastTest")

	if hit, ok := world.RaycastSingle(start, end, channel, params, responses, objects); ok {
		logger.WithField("hit", hit).Info("RaycastSingle")
	}

	hits, blocking := world.RaycastMulti(start, end, channel, params, responses, objects)
	logger.WithFields(log.Fields{"hits": len(hits), "blocking": blocking}).Info("RaycastMulti")

	sphere := probe.MakeSphere(0.5)
	capsule := probe.MakeCapsule(0.5, 1)
	rotation := mgl64.QuatIdent()

	logger.WithField("blocked", world.GeomSweepTest(sphere, rotation, start, end, channel, params, responses, objects)).Info("GeomSweepTest")

	if hit, ok := world.GeomSweepSingle(capsule, rotation, mgl64.Vec3{0, 0, 50}, mgl64.Vec3{0, 0, -50}, channel, params, responses, objects); ok {
		logger.WithField("hit", hit).Info("GeomSweepSingle")
	}

	hits, blocking = world.GeomSweepMulti(sphere, rotation, start, end, channel, params, responses, objects)
	logger.WithFields(log.Fields{"hits": len(hits), "blocking": blocking}).Info("GeomSweepMulti")

	box := probe.MakeBox(mgl64.Vec3{15, 2, 2})
	center := mgl64.Vec3{20, 0, 1}
	overlaps, blocking := world.GeomOverlapMulti(box, center, rotation, channel, params, responses, filter.AllDynamicObjects())
	logger.WithFields(log.Fields{"overlaps": len(overlaps), "blocking": blocking}).Info("GeomOverlapMulti")

	logger.WithField("found", world.GeomOverlapAnyTest(box, center, rotation, channel, params, responses, objects)).Info("GeomOverlapAnyTest")
	logger.WithField("found", world.GeomOverlapBlockingTest(box, center, rotation, channel, params, responses, objects)).Info("GeomOverlapBlockingTest")
}

func logQuery(logger log.FieldLogger) probe.QueryListener {
	return func(event probe.QueryEvent) {
		logger.WithFields(log.Fields{
			"type":     event.Type,
			"mode":     event.Mode,
			"shape":    event.Shape,
			"tag":      event.Tag,
			"hits":     len(event.Hits),
			"overlaps": len(event.Overlaps),
			"touchAll": len(event.TouchAll),
			"duration": event.Duration,
		}).Debug("query captured")
	}
}
