package rig

import "github.com/sceneforge/rigkit/pkg/scene"

// singleHandKinds is the interactable family the cleanup rule polices.
var singleHandKinds = []scene.Kind{
	scene.KindStandardInteractable,
	scene.KindTouchInteractable,
}

// cleanSubtree removes misplaced single-hand interactables from the
// descendants of a target node. An interactable on a descendant that also
// carries a grabbable is a valid nested rig root (an independently grabbable
// sub-part, e.g. an articulated limb) and is preserved untouched. One on a
// passive child (e.g. a collider mesh) would shadow the target's own
// interaction setup and is removed. Every removal goes through the edit log.
func cleanSubtree(log *EditLog, target *scene.Node, report *Report) {
	target.Walk(func(n *scene.Node) bool {
		if n == target {
			return true
		}
		if n.HasCapability(scene.KindGrabbable) {
			return true
		}
		for _, kind := range singleHandKinds {
			if c := n.Capability(kind); c != nil {
				log.RemoveCapability(n, c)
				report.logf("removed misplaced %s from %s", kind, n.Path())
			}
		}
		return true
	})
}
