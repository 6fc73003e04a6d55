// Package constructer builds animated vector scenes on [Ebitengine].
//
// A [Stage] holds scenes, each an ordered stack of path [Layer]s. Layers are
// animated by morphing their path data ([morph]), by keyframe timelines
// ([keyframe]), by gween-driven style tweens ([StyleTween]) and by
// scroll-linked effects on the stage [Viewport].
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	stage := constructer.NewStage(640, 480)
//	scene, _ := stage.CreateScene("")
//	blob, _ := scene.NewLayer("M 10 10 L 90 10 L 90 90 Z", 0)
//	blob.Fill = constructer.MustParseColor("#e85d75")
//	constructer.Run(stage, constructer.RunConfig{Title: "Blob"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Stage.Update] and [Stage.Draw] directly, or embed the Stage.
//
// # Time
//
// Morph sessions, loops and timelines run on a [clock.Clock]. The stage owns
// a [clock.Manual] and advances it by one tick per Update, so everything
// started on [Stage.Clock] follows the game loop. Tests drive the same
// clock with [Stage.Step] without opening a window.
//
// # Storyboards
//
// A [Storyboard] describes a whole stage in YAML or TOML: window settings,
// scenes and layers, morph loops, reusable sequences, timelines and scroll
// effects. [LoadStoryboardFile] decodes one and [Storyboard.Hydrate] builds
// it. [RunConfig.Watch] reloads it whenever the file changes.
//
// [Ebitengine]: https://ebitengine.org
package constructer
